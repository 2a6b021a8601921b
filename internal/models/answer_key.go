package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

var (
	ErrUnknownQuestionType = errors.New("unknown question type")
	ErrMalformedAnswerKey  = errors.New("malformed correct answer")
)

// AnswerKey is the typed correct answer of a question. Exactly one
// implementation exists per QuestionType.
type AnswerKey interface {
	QuestionType() QuestionType
	isAnswerKey()
}

// SingleSelectKey is the index of the one correct option.
type SingleSelectKey struct {
	Index int
}

// MultipleSelectKey is the set of correct option indices.
type MultipleSelectKey struct {
	Indices []int
}

// FillInBlankKey lists every accepted spelling of the answer.
type FillInBlankKey struct {
	Accepted []string
}

// IntegerKey is the exact numeric answer.
type IntegerKey struct {
	Value float64
}

func (SingleSelectKey) QuestionType() QuestionType   { return SingleSelect }
func (MultipleSelectKey) QuestionType() QuestionType { return MultipleSelect }
func (FillInBlankKey) QuestionType() QuestionType    { return FillInBlank }
func (IntegerKey) QuestionType() QuestionType        { return Integer }

func (SingleSelectKey) isAnswerKey()   {}
func (MultipleSelectKey) isAnswerKey() {}
func (FillInBlankKey) isAnswerKey()    {}
func (IntegerKey) isAnswerKey()        {}

// Contains reports whether idx is one of the correct indices.
func (k MultipleSelectKey) Contains(idx int) bool {
	for _, i := range k.Indices {
		if i == idx {
			return true
		}
	}
	return false
}

// DecodeAnswerKey parses the JSON-encoded correct answer for a question type.
func DecodeAnswerKey(t QuestionType, raw []byte) (AnswerKey, error) {
	if IsNullJSON(raw) {
		return nil, fmt.Errorf("%w: missing", ErrMalformedAnswerKey)
	}

	switch t {
	case SingleSelect:
		idx, ok := DecodeIndex(raw)
		if !ok {
			return nil, fmt.Errorf("%w: expected an option index", ErrMalformedAnswerKey)
		}
		return SingleSelectKey{Index: idx}, nil
	case MultipleSelect:
		indices, ok := DecodeIndexSet(raw)
		if !ok {
			return nil, fmt.Errorf("%w: expected an array of option indices", ErrMalformedAnswerKey)
		}
		return MultipleSelectKey{Indices: indices}, nil
	case FillInBlank:
		var accepted []string
		if err := json.Unmarshal(raw, &accepted); err != nil {
			return nil, fmt.Errorf("%w: expected an array of strings", ErrMalformedAnswerKey)
		}
		return FillInBlankKey{Accepted: accepted}, nil
	case Integer:
		v, ok := DecodeNumber(raw)
		if !ok {
			return nil, fmt.Errorf("%w: expected a number", ErrMalformedAnswerKey)
		}
		return IntegerKey{Value: v}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownQuestionType, t)
	}
}

// EncodeAnswerKey renders a key back into its stored JSON form.
func EncodeAnswerKey(k AnswerKey) (AnswerJSON, error) {
	var v interface{}
	switch key := k.(type) {
	case SingleSelectKey:
		v = key.Index
	case MultipleSelectKey:
		v = key.Indices
	case FillInBlankKey:
		v = key.Accepted
	case IntegerKey:
		v = key.Value
	default:
		return nil, ErrUnknownQuestionType
	}

	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return AnswerJSON(b), nil
}

// IsNullJSON reports whether raw is empty or the JSON literal null.
func IsNullJSON(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// DecodeNumber accepts only a JSON number literal.
func DecodeNumber(raw []byte) (float64, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return 0, false
	}
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	f, err := n.Float64()
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// DecodeIndex accepts a JSON number with no fractional part. Strings are
// rejected so that "1" and 1 never compare equal.
func DecodeIndex(raw []byte) (int, bool) {
	f, ok := DecodeNumber(raw)
	if !ok || f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

// DecodeIndexSet accepts a JSON array of indices and drops duplicates,
// keeping first-seen order. Any member that is not an index fails the set.
func DecodeIndexSet(raw []byte) ([]int, bool) {
	return decodeIndices(raw, true)
}

// DecodeSelections reads a submitted multiple-select answer. It is
// DecodeIndexSet without the strictness: members that are not indices are
// skipped and the rest still count.
func DecodeSelections(raw []byte) ([]int, bool) {
	return decodeIndices(raw, false)
}

func decodeIndices(raw []byte, strict bool) ([]int, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}

	seen := make(map[int]struct{}, len(items))
	indices := make([]int, 0, len(items))
	for _, item := range items {
		idx, ok := DecodeIndex(item)
		if !ok {
			if strict {
				return nil, false
			}
			continue
		}
		if _, dup := seen[idx]; dup {
			continue
		}
		seen[idx] = struct{}{}
		indices = append(indices, idx)
	}
	return indices, true
}
