package model

import (
	"github.com/dstotijn/go-notion"
)

// ToNotionBlock converts a node into a Notion API block.
type ToNotionBlock = func(*Node) *notion.Block

// NotionSerializer knows how to convert ProseMirror nodes to Notion API
// block structures (see CreatePageContent), the second concrete
// serialization target alongside DOMSerializer.
type NotionSerializer struct {
	// The node serialization functions.
	Nodes map[string]ToNotionBlock

	// The mark serialization functions.
	Marks map[string]ToNotionBlock
}

// CreatePageContent renders a document's top-level content as the list of
// blocks a Notion page is made of.
func CreatePageContent(node *Node, schema *Schema) []notion.Block {
	s := AddDefaultToNotion(schema)
	serializer := NotionSerializerFromSchema(s)
	return serializer.SerializePage(node.Content)
}

func defaultParagraphBlockGenerator() ToNotionBlock {
	return func(n *Node) *notion.Block {
		return &notion.Block{
			Type:      notion.BlockTypeParagraph,
			Paragraph: createParagraphBlock(n),
		}
	}
}

func createParagraphBlock(n *Node) *notion.RichTextBlock {
	result := &notion.RichTextBlock{
		Text: []notion.RichText{},
	}
	n.ForEach(func(node *Node, offset, index int) {
		text := ""
		annotations := &notion.Annotations{}
		hasAnnotation := false
		if node.Type.Name == "text" {
			text = text + *node.Text
		}
		if node.Type.Name == "hard_break" {
			text = text + "\n"
		}
		for _, m := range node.Marks {
			if m.Type.Name == "em" || m.Type.Name == "strong" {
				annotations.Bold = true
				hasAnnotation = true
			}
		}
		nextRichText := &notion.RichText{
			Type:      notion.RichTextTypeText,
			PlainText: text,
			Text: &notion.Text{
				Content: text,
			},
		}
		if hasAnnotation {
			nextRichText.Annotations = annotations
		}
		result.Text = append(result.Text, *nextRichText)
	})
	return result
}

// Build a serializer using the properties in a schema's node and
// mark specs.
func NotionSerializerFromSchema(schema *Schema) *NotionSerializer {
	return &NotionSerializer{
		Nodes: notionNodesFromSchema(schema),
	}
}

// Default ToNotion functions
var defaultToNotion = map[string]ToNotionBlock{
	"paragraph": defaultParagraphBlockGenerator(),
}

// AddDefaultToNotion fills in the ToNotion serializer of node specs that
// don't define their own with the package defaults, and the ToDOM serializer
// of mark specs that don't define their own with the default DOM mark
// serializers.
func AddDefaultToNotion(schema *Schema) *Schema {
	result := schema
	for i, n := range result.Nodes {
		if n.Spec.ToNotion == nil {
			if defaultToNotion, ok := defaultToNotion[n.Name]; ok {
				result.Nodes[i].Spec.ToNotion = defaultToNotion
			}
		}
	}
	for i, m := range result.Marks {
		if m.Spec.ToDOM == nil {
			if defaultToDOM, ok := defaultMarkToDOM[m.Name]; ok {
				result.Marks[i].Spec.ToDOM = defaultToDOM
			}
		}
	}
	return result
}

// Helper function
func (n *NotionSerializer) hasMark(markName string) bool {
	for key := range n.Marks {
		if key == markName {
			return true
		}
	}
	return false
}

// SerializePage serializes the content of this fragment to a flat list of
// Notion blocks.
func (n *NotionSerializer) SerializePage(fragment *Fragment) []notion.Block {
	var result []notion.Block
	fragment.ForEach(func(node *Node, offset, index int) {
		nextBlock := n.SerializeNode(node)
		if nextBlock != nil {
			result = append(result, *nextBlock)
		}
	})
	return result
}

// SerializeNode serializes a single node to a Notion block. This can be
// useful when you need to serialize a part of a document, as opposed to
// the whole document; use SerializePage for that.
func (n *NotionSerializer) SerializeNode(node *Node) *notion.Block {
	notionFn := n.Nodes[node.Type.Name]
	if notionFn != nil {
		return notionFn(node)
	}
	return nil
}

func notionNodesFromSchema(schema *Schema) (result map[string]ToNotionBlock) {
	result = make(map[string]ToNotionBlock)
	for _, n := range schema.Nodes {
		result[n.Name] = n.Spec.ToNotion
	}
	if textToNotion, ok := result["text"]; ok && textToNotion == nil {
		result["text"] = func(node *Node) *notion.Block {
			return &notion.Block{
				Type: notion.BlockTypeParagraph,
				Paragraph: &notion.RichTextBlock{
					Text: []notion.RichText{
						{PlainText: *node.Text},
					},
				},
			}
		}
	}
	return result
}
