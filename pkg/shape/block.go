// Package shape defines the data model of a shape dataset: datasets, their
// metadata descriptor, shape records and the unit-grid blocks they are built from.
package shape

import (
	"encoding/json"
	"fmt"
)

// BlockType is the kind of polygon a block draws inside its unit cell.
//
// The known kinds are encoded on disk as small integer codes (3, 6, 9, 12, 15).
// Any other code decodes to an unknown block that keeps its raw code so that it
// can be reported and round-tripped unchanged.
type BlockType struct {
	kind blockKind
	code int
}

type blockKind uint8

const (
	kindUnknown blockKind = iota
	kindLowerRight
	kindUpperRight
	kindLowerLeft
	kindUpperLeft
	kindSquare
)

// Wire codes of the known block types.
const (
	CodeLowerRight = 3
	CodeUpperRight = 6
	CodeLowerLeft  = 9
	CodeUpperLeft  = 12
	CodeSquare     = 15
)

var (
	LowerRight = BlockType{kind: kindLowerRight, code: CodeLowerRight}
	UpperRight = BlockType{kind: kindUpperRight, code: CodeUpperRight}
	LowerLeft  = BlockType{kind: kindLowerLeft, code: CodeLowerLeft}
	UpperLeft  = BlockType{kind: kindUpperLeft, code: CodeUpperLeft}
	Square     = BlockType{kind: kindSquare, code: CodeSquare}
)

// Unknown returns the block type for an unrecognized wire code.
func Unknown(code int) BlockType {
	return BlockType{kind: kindUnknown, code: code}
}

// BlockTypeFromCode maps a wire code to its block type.
func BlockTypeFromCode(code int) BlockType {
	switch code {
	case CodeLowerRight:
		return LowerRight
	case CodeUpperRight:
		return UpperRight
	case CodeLowerLeft:
		return LowerLeft
	case CodeUpperLeft:
		return UpperLeft
	case CodeSquare:
		return Square
	default:
		return Unknown(code)
	}
}

// Code returns the wire code.
func (t BlockType) Code() int { return t.code }

// Known reports whether the code is one of the five recognized block types.
func (t BlockType) Known() bool { return t.kind != kindUnknown }

func (t BlockType) IsLowerRight() bool { return t.kind == kindLowerRight }
func (t BlockType) IsUpperRight() bool { return t.kind == kindUpperRight }
func (t BlockType) IsLowerLeft() bool  { return t.kind == kindLowerLeft }
func (t BlockType) IsUpperLeft() bool  { return t.kind == kindUpperLeft }
func (t BlockType) IsSquare() bool     { return t.kind == kindSquare }

func (t BlockType) String() string {
	switch t.kind {
	case kindLowerRight:
		return "lower_right"
	case kindUpperRight:
		return "upper_right"
	case kindLowerLeft:
		return "lower_left"
	case kindUpperLeft:
		return "upper_left"
	case kindSquare:
		return "square"
	default:
		return fmt.Sprintf("unknown(%d)", t.code)
	}
}

// MarshalJSON encodes the block type as its wire code.
func (t BlockType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.code)
}

// UnmarshalJSON decodes a wire code.
func (t *BlockType) UnmarshalJSON(data []byte) error {
	var code int
	if err := json.Unmarshal(data, &code); err != nil {
		return fmt.Errorf("block type: %w", err)
	}
	*t = BlockTypeFromCode(code)
	return nil
}

// Block is one unit cell of a shape.
type Block struct {
	X    int       `json:"x"`
	Y    int       `json:"y"`
	Type BlockType `json:"type"`
}

// Record is one line of a shard: a shape identifier and its blocks.
//
// Identifiers are 1-based and contiguous within a dataset. Overlap and
// connectivity of blocks are not checked.
type Record struct {
	ID     int     `json:"id"`
	Blocks []Block `json:"blocks"`
}
