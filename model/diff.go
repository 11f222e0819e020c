package model

// FindDiffStart returns the first position where the two fragments have not
// the same content.
func FindDiffStart(a, b *Fragment, pos int) *int {
	for i := 0; ; i++ {
		if i == a.ChildCount() || i == b.ChildCount() {
			if a.ChildCount() == b.ChildCount() {
				return nil
			}
			return &pos
		}

		childA, err := a.Child(i)
		if err != nil {
			return nil
		}
		childB, err := b.Child(i)
		if err != nil {
			return nil
		}
		if childA == childB {
			pos += childA.NodeSize()
			continue
		}

		if !childA.SameMarkup(childB) {
			return &pos
		}

		if childA.IsText() && *childA.Text != *childB.Text {
			ta, tb := *childA.Text, *childB.Text
			j := 0
			for j < len(ta) && j < len(tb) && ta[j] == tb[j] {
				j++
				pos++
			}
			return &pos
		}
		if childA.Content != nil && (childA.Content.Size > 0 || (childB.Content != nil && childB.Content.Size > 0)) {
			inner := FindDiffStart(childA.Content, childB.Content, pos+1)
			if inner != nil {
				return inner
			}
		}
		pos += childA.NodeSize()
	}
}

// DiffEnd is the result of FindDiffEnd with the positions in both a and b
// fragments.
type DiffEnd struct {
	A int
	B int
}

// FindDiffEnd returns the last position where the two fragments have not
// the same content.
func FindDiffEnd(a, b *Fragment, posA, posB int) *DiffEnd {
	ia := a.ChildCount()
	ib := b.ChildCount()
	for {
		if ia == 0 || ib == 0 {
			if ia == ib {
				return nil
			}
			return &DiffEnd{A: posA, B: posB}
		}

		ia--
		ib--
		childA, err := a.Child(ia)
		if err != nil {
			return nil
		}
		childB, err := b.Child(ib)
		if err != nil {
			return nil
		}
		size := childA.NodeSize()
		if childA == childB {
			posA -= size
			posB -= size
			continue
		}

		if !childA.SameMarkup(childB) {
			return &DiffEnd{A: posA, B: posB}
		}

		if childA.IsText() && *childA.Text != *childB.Text {
			ta, tb := *childA.Text, *childB.Text
			same := 0
			la, lb := len(ta), len(tb)
			minSize := la
			if lb < minSize {
				minSize = lb
			}
			for same < minSize && ta[la-same-1] == tb[lb-same-1] {
				same++
				posA--
				posB--
			}
			return &DiffEnd{A: posA, B: posB}
		}
		if childA.Content != nil && (childA.Content.Size > 0 || (childB.Content != nil && childB.Content.Size > 0)) {
			inner := FindDiffEnd(childA.Content, childB.Content, posA-1, posB-1)
			if inner != nil {
				return inner
			}
		}
		posA -= size
		posB -= size
	}
}
