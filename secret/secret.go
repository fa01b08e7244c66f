// Package secret validates and scores the three-unique-digit numbers
// players commit to at the start of a match.
package secret

import (
	"encoding/json"
	"fmt"
)

// Secret is a three-digit number whose digits are pairwise distinct.
// The zero value is not a valid Secret; always construct one with Parse.
type Secret struct {
	n uint16
}

// Parse validates n as a Secret: it must fall in [12, 987] and its three
// decimal digits (leading zero allowed for 12-99) must be pairwise distinct.
func Parse(n int) (Secret, error) {
	if n < 12 || n > 987 {
		return Secret{}, fmt.Errorf("secret %d out of range [12, 987]", n)
	}
	units := n % 10
	tens := (n / 10) % 10
	hundreds := (n / 100) % 10
	if units == tens || units == hundreds || hundreds == tens {
		return Secret{}, fmt.Errorf("secret %d has repeated digits", n)
	}
	return Secret{n: uint16(n)}, nil
}

// Int returns the numeric value of the secret.
func (s Secret) Int() int {
	return int(s.n)
}

func (s Secret) digits() [3]int {
	n := int(s.n)
	return [3]int{(n / 100) % 10, (n / 10) % 10, n % 10}
}

// Score compares s (the answer) against guess, returning the number of
// digits in the correct position and the number of digits present
// elsewhere in guess. correct+wrong never exceeds 3; a full match is (3, 0).
func (s Secret) Score(guess Secret) (correct, wrong int) {
	a := s.digits()
	b := guess.digits()
	for i := 0; i < 3; i++ {
		switch {
		case a[i] == b[i]:
			correct++
		case a[i] == b[(i+1)%3] || a[i] == b[(i+2)%3]:
			wrong++
		}
	}
	return correct, wrong
}

// MarshalJSON encodes the secret as a bare JSON number.
func (s Secret) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.n)
}

// UnmarshalJSON decodes and validates a JSON number into a Secret.
func (s *Secret) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decoding secret: %w", err)
	}
	parsed, err := Parse(n)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// String formats the secret with a leading zero for two-digit values.
func (s Secret) String() string {
	return fmt.Sprintf("%03d", s.n)
}
