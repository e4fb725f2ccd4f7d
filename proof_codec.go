package bmt

import (
	"encoding/json"
	"fmt"

	"github.com/gogo/protobuf/proto"
	"github.com/tidwall/gjson"

	"github.com/celestiaorg/bmt/digest"
)

// Binary proofs use the protobuf wire format of
//
//	message Proof { uint64 leaf_index = 1; repeated Node nodes = 2; }
//	message Node { Direction direction = 1; bytes sibling = 2; }
//
// Zero valued scalars are omitted, as proto3 encoders do.
const (
	fieldLeafIndex = 1
	fieldNodes     = 2

	fieldDirection = 1
	fieldSibling   = 2
)

func fieldKey(field, wireType int) uint64 {
	return uint64(field<<3 | wireType)
}

// MarshalBinary encodes the proof in protobuf wire format.
func (proof Proof) MarshalBinary() ([]byte, error) {
	if proof.leafIndex < 0 {
		return nil, fmt.Errorf("%w: negative leaf index %d", ErrInvalidProof, proof.leafIndex)
	}
	buf := proto.NewBuffer(nil)
	if proof.leafIndex != 0 {
		_ = buf.EncodeVarint(fieldKey(fieldLeafIndex, proto.WireVarint))
		_ = buf.EncodeVarint(uint64(proof.leafIndex))
	}
	for _, n := range proof.nodes {
		node := proto.NewBuffer(nil)
		if n.Direction != Left {
			_ = node.EncodeVarint(fieldKey(fieldDirection, proto.WireVarint))
			_ = node.EncodeVarint(uint64(n.Direction))
		}
		if len(n.Sibling) > 0 {
			_ = node.EncodeVarint(fieldKey(fieldSibling, proto.WireBytes))
			_ = node.EncodeRawBytes(n.Sibling)
		}
		_ = buf.EncodeVarint(fieldKey(fieldNodes, proto.WireBytes))
		_ = buf.EncodeRawBytes(node.Bytes())
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes a proof produced by MarshalBinary.
// Unknown fields are rejected.
func (proof *Proof) UnmarshalBinary(data []byte) error {
	var (
		leafIndex uint64
		nodes     []ProofNode
	)
	err := decodeFields(data, func(field, wireType int, varint uint64, raw []byte) error {
		switch {
		case field == fieldLeafIndex && wireType == proto.WireVarint:
			leafIndex = varint
		case field == fieldNodes && wireType == proto.WireBytes:
			n, err := decodeNode(raw)
			if err != nil {
				return fmt.Errorf("node %d: %w", len(nodes), err)
			}
			nodes = append(nodes, n)
		default:
			return fmt.Errorf("unexpected field %d with wire type %d", field, wireType)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProof, err)
	}
	if leafIndex >= 1<<MaxDepth {
		return fmt.Errorf("%w: leaf index %d out of range", ErrInvalidProof, leafIndex)
	}
	*proof = NewProof(int(leafIndex), nodes)
	return nil
}

func decodeNode(data []byte) (ProofNode, error) {
	var n ProofNode
	err := decodeFields(data, func(field, wireType int, varint uint64, raw []byte) error {
		switch {
		case field == fieldDirection && wireType == proto.WireVarint:
			if varint > uint64(Right) {
				return fmt.Errorf("unknown direction %d", varint)
			}
			n.Direction = Direction(varint)
		case field == fieldSibling && wireType == proto.WireBytes:
			n.Sibling = append([]byte(nil), raw...)
		default:
			return fmt.Errorf("unexpected field %d with wire type %d", field, wireType)
		}
		return nil
	})
	return n, err
}

// decodeFields walks the varint and length-delimited fields of one message.
func decodeFields(data []byte, visit func(field, wireType int, varint uint64, raw []byte) error) error {
	for len(data) > 0 {
		key, n := proto.DecodeVarint(data)
		if n == 0 {
			return fmt.Errorf("truncated field key")
		}
		data = data[n:]
		field, wireType := int(key>>3), int(key&7)
		if field == 0 {
			return fmt.Errorf("illegal field number 0")
		}

		switch wireType {
		case proto.WireVarint:
			v, n := proto.DecodeVarint(data)
			if n == 0 {
				return fmt.Errorf("truncated varint in field %d", field)
			}
			data = data[n:]
			if err := visit(field, wireType, v, nil); err != nil {
				return err
			}
		case proto.WireBytes:
			l, n := proto.DecodeVarint(data)
			if n == 0 {
				return fmt.Errorf("truncated length in field %d", field)
			}
			data = data[n:]
			if l > uint64(len(data)) {
				return fmt.Errorf("field %d: length %d exceeds remaining %d bytes", field, l, len(data))
			}
			if err := visit(field, wireType, 0, data[:l]); err != nil {
				return err
			}
			data = data[l:]
		default:
			return fmt.Errorf("unsupported wire type %d in field %d", wireType, field)
		}
	}
	return nil
}

type jsonProofNode struct {
	Direction string        `json:"direction"`
	Sibling   digest.Digest `json:"sibling"`
}

type jsonProof struct {
	LeafIndex int             `json:"leaf_index"`
	Nodes     []jsonProofNode `json:"nodes"`
}

// MarshalJSON encodes the proof with hex siblings, e.g.
// {"leaf_index":3,"nodes":[{"direction":"right","sibling":"2222..."}]}.
func (proof Proof) MarshalJSON() ([]byte, error) {
	out := jsonProof{
		LeafIndex: proof.leafIndex,
		Nodes:     make([]jsonProofNode, len(proof.nodes)),
	}
	for i, n := range proof.nodes {
		out.Nodes[i] = jsonProofNode{Direction: n.Direction.String(), Sibling: n.Sibling}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the output of MarshalJSON.
func (proof *Proof) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("%w: malformed json", ErrInvalidProof)
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return fmt.Errorf("%w: expected a json object", ErrInvalidProof)
	}

	idx := doc.Get("leaf_index")
	if idx.Type != gjson.Number || idx.Num < 0 || idx.Num >= 1<<MaxDepth || idx.Num != float64(idx.Int()) {
		return fmt.Errorf("%w: leaf_index must be a non-negative integer, got %q", ErrInvalidProof, idx.Raw)
	}

	raw := doc.Get("nodes")
	if raw.Exists() && raw.Type != gjson.Null && !raw.IsArray() {
		return fmt.Errorf("%w: nodes must be an array", ErrInvalidProof)
	}
	var (
		nodes []ProofNode
		err   error
	)
	raw.ForEach(func(_, n gjson.Result) bool {
		var node ProofNode
		switch dir := n.Get("direction").String(); dir {
		case Left.String():
			node.Direction = Left
		case Right.String():
			node.Direction = Right
		default:
			err = fmt.Errorf("%w: node %d: unknown direction %q", ErrInvalidProof, len(nodes), dir)
			return false
		}
		sib := n.Get("sibling")
		if sib.Type != gjson.String {
			err = fmt.Errorf("%w: node %d: sibling must be a hex string", ErrInvalidProof, len(nodes))
			return false
		}
		node.Sibling, err = digest.Parse(sib.Str)
		if err != nil {
			err = fmt.Errorf("%w: node %d: %v", ErrInvalidProof, len(nodes), err)
			return false
		}
		nodes = append(nodes, node)
		return true
	})
	if err != nil {
		return err
	}
	*proof = NewProof(int(idx.Int()), nodes)
	return nil
}
