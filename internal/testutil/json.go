package testutil

import "encoding/json"

func mustJSON(v interface{}) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

// RawJSON marshals v for use as a submitted answer.
func RawJSON(v interface{}) json.RawMessage {
	return mustJSON(v)
}
