package election

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/voteguard/voteguard-node/types"
)

func TestBuildManifest(t *testing.T) {
	c := qt.New(t)
	id := types.HexBytes{0x01, 0x02}
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(48 * time.Hour)

	m, err := BuildManifest(id, "board", []string{"Alice", "Bob", "Carol"}, 1, start, end)
	c.Assert(err, qt.IsNil)
	c.Assert(m.Contest.Selections, qt.HasLen, 3)
	// sequence order matches candidate list order
	for i, name := range []string{"Alice", "Bob", "Carol"} {
		c.Assert(m.Contest.Selections[i].SequenceOrder, qt.Equals, i)
		c.Assert(m.Contest.Selections[i].CandidateName, qt.Equals, name)
	}
	c.Assert(m.Contest.Selections[0].ObjectID, qt.Equals, "candidate-0102-0")

	// deterministic: same inputs, same hash
	m2, err := BuildManifest(id, "board", []string{"Alice", "Bob", "Carol"}, 1, start, end)
	c.Assert(err, qt.IsNil)
	h1, err := m.Hash()
	c.Assert(err, qt.IsNil)
	h2, err := m2.Hash()
	c.Assert(err, qt.IsNil)
	c.Assert(h2, qt.DeepEquals, h1)

	// serialization roundtrip
	data, err := m.Serialize()
	c.Assert(err, qt.IsNil)
	decoded, err := DeserializeManifest(data)
	c.Assert(err, qt.IsNil)
	c.Assert(decoded.Contest.MaxSelections, qt.Equals, 1)
	c.Assert(decoded.Contest.Selections, qt.DeepEquals, m.Contest.Selections)
}

func TestBuildManifestValidation(t *testing.T) {
	c := qt.New(t)
	id := types.HexBytes{0x01}
	now := time.Now()

	_, err := BuildManifest(id, "x", []string{"Alice"}, 1, now, now)
	c.Assert(err, qt.IsNotNil)

	_, err = BuildManifest(id, "x", []string{"Alice", "Alice"}, 1, now, now)
	c.Assert(err, qt.IsNotNil)

	_, err = BuildManifest(id, "x", []string{"Alice", "Bob"}, 0, now, now)
	c.Assert(err, qt.IsNotNil)

	_, err = BuildManifest(id, "x", []string{"Alice", "Bob"}, 3, now, now)
	c.Assert(err, qt.IsNotNil)

	_, err = BuildManifest(nil, "x", []string{"Alice", "Bob"}, 1, now, now)
	c.Assert(err, qt.IsNotNil)
}
