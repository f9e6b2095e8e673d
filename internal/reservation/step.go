package reservation

import (
	"fmt"
	"strings"
)

// Step is a page of the booking wizard
type Step int

const (
	StepContact Step = iota + 1
	StepDates
	StepPayment
)

var stepNames = map[Step]string{
	StepContact: "contact",
	StepDates:   "dates",
	StepPayment: "payment",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("step(%d)", int(s))
}

func ParseStep(s string) (Step, error) {
	for step, name := range stepNames {
		if strings.EqualFold(s, name) {
			return step, nil
		}
	}
	return 0, fmt.Errorf("unknown step %q", s)
}

func (s Step) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Step) UnmarshalText(b []byte) error {
	step, err := ParseStep(string(b))
	if err != nil {
		return err
	}
	*s = step
	return nil
}
