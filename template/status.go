package template

import "log/slog"

// LoopStatus describes the progress of a loop command. It is bound in the
// loop body under the name given by the varStatus argument ("status" by
// default), and its fields are visible to expressions in lower case:
//
//	${status.index} of ${status.count}
//
// A single LoopStatus is shared by every iteration of one loop; Index is
// updated before each execution of the body.
//
// Begin, End and Step hold the bounds the loop actually uses, not only the
// arguments given: an unset or negative end is Count, an unset or
// non-positive step is 1 and a negative begin is 0. If var and varStatus name
// the same variable, the status is bound and the element is not visible.
type LoopStatus struct {
	Count int `expr:"count" json:"count" yaml:"count"`
	Index int `expr:"index" json:"index" yaml:"index"`
	Begin int `expr:"begin" json:"begin" yaml:"begin"`
	End   int `expr:"end"   json:"end"   yaml:"end"`
	Step  int `expr:"step"  json:"step"  yaml:"step"`
}

// First reports whether the current iteration is the first one executed.
func (s *LoopStatus) First() bool { return s.Index == s.Begin }

// Last reports whether the current iteration is the last one executed.
func (s *LoopStatus) Last() bool {
	return s.Index+s.Step >= min(s.End, s.Count)
}

// LogValue implements slog.LogValuer.
func (s *LoopStatus) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("count", s.Count),
		slog.Int("index", s.Index),
		slog.Int("begin", s.Begin),
		slog.Int("end", s.End),
		slog.Int("step", s.Step),
	)
}
