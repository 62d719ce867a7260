package lotto

import "fmt"

// ValidateNumbers checks that nums holds exactly PickSize distinct values in [MinNumber, MaxNumber].
// field names the offending input in the returned *InvalidInputError.
func ValidateNumbers(field string, nums []int) error {
	if len(nums) != PickSize {
		return &InvalidInputError{Field: field, Reason: fmt.Sprintf("want %d numbers, got %d", PickSize, len(nums))}
	}
	var seen [MaxNumber + 1]bool
	for _, n := range nums {
		if n < MinNumber || n > MaxNumber {
			return &InvalidInputError{Field: field, Reason: fmt.Sprintf("number %d out of range [%d,%d]", n, MinNumber, MaxNumber)}
		}
		if seen[n] {
			return &InvalidInputError{Field: field, Reason: fmt.Sprintf("duplicate number %d", n)}
		}
		seen[n] = true
	}
	return nil
}
