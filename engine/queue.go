package engine

// MaxPreview is the deepest next-queue a Rules value may request.
const MaxPreview = 7

// NextQueue is the FIFO of upcoming pieces shown to the player.
type NextQueue struct {
	Items [MaxPreview]PieceType
	Len   uint8
}

// Peek returns the i-th upcoming piece, or PieceNone past the end.
func (q *NextQueue) Peek(i int) PieceType {
	if i < 0 || i >= int(q.Len) {
		return PieceNone
	}
	return q.Items[i]
}

func (q *NextQueue) push(p PieceType) bool {
	if q.Len >= MaxPreview {
		return false
	}
	q.Items[q.Len] = p
	q.Len++
	return true
}

func (q *NextQueue) pop() PieceType {
	if q.Len == 0 {
		return PieceNone
	}
	p := q.Items[0]
	copy(q.Items[:], q.Items[1:q.Len])
	q.Len--
	q.Items[q.Len] = PieceNone
	return p
}

// fillQueue tops the next queue up to the configured preview depth.
func (g *GameState) fillQueue() error {
	depth := g.Rules.preview()
	for int(g.Next.Len) < depth {
		p, err := g.Bag.Next()
		if err != nil {
			return err
		}
		g.Next.push(p)
	}
	return nil
}
