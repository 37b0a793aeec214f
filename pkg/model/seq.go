package model

// Seq is a monotonically increasing id generator.
type Seq struct {
	last int
}

// NaturalNumbers returns a sequence whose first value is start+1.
func NaturalNumbers(start int) *Seq {
	return &Seq{last: start}
}

// Next returns the next id.
func (s *Seq) Next() int {
	s.last++
	return s.last
}

// Last returns the most recently issued id, or the seed if none was issued.
func (s *Seq) Last() int {
	return s.last
}

// Observe raises the sequence so the next id is greater than id. Lower ids
// leave the sequence untouched.
func (s *Seq) Observe(id int) {
	if id > s.last {
		s.last = id
	}
}
