package bus

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// EntryID is the id a stream assigns to an entry, "<millis>-<seq>".
type EntryID struct {
	Millis uint64
	Seq    uint64
}

func ParseEntryID(s string) (EntryID, error) {
	ms, seq, ok := strings.Cut(s, "-")
	if !ok {
		return EntryID{}, fmt.Errorf("entry id %q: missing sequence", s)
	}
	m, err := strconv.ParseUint(ms, 10, 64)
	if err != nil {
		return EntryID{}, fmt.Errorf("entry id %q: %w", s, err)
	}
	n, err := strconv.ParseUint(seq, 10, 64)
	if err != nil {
		return EntryID{}, fmt.Errorf("entry id %q: %w", s, err)
	}
	return EntryID{Millis: m, Seq: n}, nil
}

func (e EntryID) String() string {
	return strconv.FormatUint(e.Millis, 10) + "-" + strconv.FormatUint(e.Seq, 10)
}

func (e EntryID) Less(o EntryID) bool {
	if e.Millis != o.Millis {
		return e.Millis < o.Millis
	}
	return e.Seq < o.Seq
}

func (e EntryID) IsZero() bool {
	return e == EntryID{}
}

// Merge orders entries read from several streams by entry id, breaking ties
// by topic name.
func Merge(msgs []Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].ID != msgs[j].ID {
			return msgs[i].ID.Less(msgs[j].ID)
		}
		return msgs[i].Topic < msgs[j].Topic
	})
}
