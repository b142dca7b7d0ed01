package sexp

// Prune removes, bottom-up, every nil value, empty string, and composite
// that reduces to zero children. Removal cascades: a record whose pairs all
// prune away prunes in turn. Pruning an already-pruned tree is a no-op, so
// output is canonical for diffing.
func Prune(n Node) Node {
	switch v := n.(type) {
	case nil:
		return nil
	case Str:
		if v == "" {
			return nil
		}
		return v
	case Int:
		return v
	case Seq:
		var out Seq
		for _, child := range v {
			if p := Prune(child); p != nil {
				out = append(out, p)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	case *Record:
		out := NewRecord()
		for _, p := range v.Pairs {
			pruned := Prune(p.Value)
			if pruned == nil {
				continue
			}
			out.Add(p.Key, pruned)
		}
		if len(out.Pairs) == 0 {
			return nil
		}
		return out
	default:
		return n
	}
}
