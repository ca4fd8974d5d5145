package session

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/flavourheaven/costonomy/internal/scaling"
)

// state is the persisted part of a session that has no column of its own.
type state struct {
	Name              string       `msgpack:"name,omitempty"`
	Unit              string       `msgpack:"unit,omitempty"`
	UnitQuantity      float64      `msgpack:"unit_quantity,omitempty"`
	BaseReference     float64      `msgpack:"base_reference,omitempty"`
	ReferenceQuantity float64      `msgpack:"reference_quantity,omitempty"`
	Multiplier        float64      `msgpack:"multiplier,omitempty"`
	Original          []lineRecord `msgpack:"original,omitempty"`
	Current           []lineRecord `msgpack:"current,omitempty"`
	Guarded           []int64      `msgpack:"guarded,omitempty"`
	ReferenceGuarded  bool         `msgpack:"reference_guarded,omitempty"`
}

type lineRecord struct {
	ItemID       int64   `msgpack:"item_id,omitempty"`
	BaseItemID   int64   `msgpack:"base_item_id,omitempty"`
	Name         string  `msgpack:"name,omitempty"`
	BaseItemName string  `msgpack:"base_item_name,omitempty"`
	Unit         string  `msgpack:"unit,omitempty"`
	UnitQuantity float64 `msgpack:"unit_quantity,omitempty"`
	UnitPrice    float64 `msgpack:"unit_price,omitempty"`
	Quantity     float64 `msgpack:"quantity,omitempty"`
	Price        float64 `msgpack:"price,omitempty"`
}

func newLineRecords(lines []scaling.IngredientLine) []lineRecord {
	if lines == nil {
		return nil
	}
	out := make([]lineRecord, len(lines))
	for i, l := range lines {
		out[i] = lineRecord(l)
	}
	return out
}

func toLines(records []lineRecord) []scaling.IngredientLine {
	out := make([]scaling.IngredientLine, len(records))
	for i, r := range records {
		out[i] = scaling.IngredientLine(r)
	}
	return out
}

func encodeState(s *Session) ([]byte, error) {
	b, err := msgpack.Marshal(&state{
		Name:              s.Name,
		Unit:              s.Unit,
		UnitQuantity:      s.UnitQuantity,
		BaseReference:     s.BaseReference,
		ReferenceQuantity: s.ReferenceQuantity,
		Multiplier:        s.Multiplier,
		Original:          newLineRecords(s.Original),
		Current:           newLineRecords(s.Current),
		Guarded:           s.Guarded,
		ReferenceGuarded:  s.ReferenceGuarded,
	})
	if err != nil {
		return nil, fmt.Errorf("encode session state: %w", err)
	}
	return b, nil
}

func decodeState(b []byte, s *Session) error {
	var st state
	if err := msgpack.Unmarshal(b, &st); err != nil {
		return fmt.Errorf("decode session state: %w", err)
	}
	s.Name = st.Name
	s.Unit = st.Unit
	s.UnitQuantity = st.UnitQuantity
	s.BaseReference = st.BaseReference
	s.ReferenceQuantity = st.ReferenceQuantity
	s.Multiplier = st.Multiplier
	s.Original = toLines(st.Original)
	s.Current = toLines(st.Current)
	s.Guarded = st.Guarded
	s.ReferenceGuarded = st.ReferenceGuarded
	return nil
}
