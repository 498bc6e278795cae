package kafka

import (
	"testing"
)

type ingest struct {
	ID      int    `json:"id"`
	Text    string `json:"text"`
	Ratings []int  `json:"ratings"`
}

func TestDecodeJSON(t *testing.T) {
	got, err := DecodeJSON[ingest]([]byte(`{"id":3,"text":"white cat","ratings":[1,2]}`))
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != 3 || got.Text != "white cat" || len(got.Ratings) != 2 {
		t.Errorf("decoded %+v", got)
	}
	if _, err := DecodeJSON[ingest]([]byte(`{"id":"x"`)); err == nil {
		t.Error("expected error for malformed payload")
	}
}

func TestEncode(t *testing.T) {
	msgs, err := encode([]Event{
		{Key: "a", Value: map[string]int{"n": 1}},
		{Key: "b", Value: "text"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 || string(msgs[0].Key) != "a" || string(msgs[0].Value) != `{"n":1}` {
		t.Errorf("messages = %+v", msgs)
	}
	if _, err := encode([]Event{{Key: "bad", Value: func() {}}}); err == nil {
		t.Error("expected marshal error")
	}
}
