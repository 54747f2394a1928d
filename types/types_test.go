package types

import (
	"encoding/json"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestElectionStatusJSON(t *testing.T) {
	c := qt.New(t)
	data, err := json.Marshal(ElectionStatusVotingOpen)
	c.Assert(err, qt.IsNil)
	c.Assert(string(data), qt.Equals, `"voting_open"`)

	var s ElectionStatus
	c.Assert(json.Unmarshal([]byte(`"closed"`), &s), qt.IsNil)
	c.Assert(s, qt.Equals, ElectionStatusClosed)

	c.Assert(json.Unmarshal([]byte(`"bogus"`), &s), qt.IsNotNil)
}

func TestHexBytesJSON(t *testing.T) {
	c := qt.New(t)
	b := HexBytes{0xde, 0xad, 0xbe, 0xef}
	data, err := json.Marshal(b)
	c.Assert(err, qt.IsNil)
	c.Assert(string(data), qt.Equals, `"0xdeadbeef"`)

	var got HexBytes
	c.Assert(json.Unmarshal([]byte(`"deadbeef"`), &got), qt.IsNil)
	c.Assert(got.Equal(b), qt.IsTrue)

	_, err = HexStringToHexBytes("0xzz")
	c.Assert(err, qt.IsNotNil)
}
