package abi

import (
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/trebuchet-org/sling/internal/domain/models"
)

// ConstructorEncoder builds contract creation payloads from command line arguments
type ConstructorEncoder struct{}

// NewConstructorEncoder creates a new constructor encoder
func NewConstructorEncoder() *ConstructorEncoder {
	return &ConstructorEncoder{}
}

// EncodeDeployment returns the blueprint's init code followed by the
// ABI encoded constructor arguments.
func (e *ConstructorEncoder) EncodeDeployment(blueprint *models.Blueprint, args []string) ([]byte, error) {
	packed, err := e.EncodeConstructorArgs(blueprint, args)
	if err != nil {
		return nil, err
	}

	data := make([]byte, 0, len(blueprint.Bytecode)+len(packed))
	data = append(data, blueprint.Bytecode...)
	return append(data, packed...), nil
}

// EncodeConstructorArgs parses each argument according to the constructor's
// parameter types and packs them.
func (e *ConstructorEncoder) EncodeConstructorArgs(blueprint *models.Blueprint, args []string) ([]byte, error) {
	inputs := blueprint.ConstructorInputs()
	if len(inputs) != len(args) {
		return nil, fmt.Errorf("%s expects %d constructor argument(s) %s, got %d",
			blueprint.Name, len(inputs), blueprint.ConstructorSignature(), len(args))
	}
	if len(inputs) == 0 {
		return nil, nil
	}

	values := make([]any, len(inputs))
	for i, input := range inputs {
		value, err := ParseValue(input.Type, args[i])
		if err != nil {
			name := input.Name
			if name == "" {
				name = fmt.Sprintf("#%d", i)
			}
			return nil, fmt.Errorf("invalid constructor argument %s (%s): %w", name, input.Type.String(), err)
		}
		values[i] = value
	}

	packed, err := inputs.Pack(values...)
	if err != nil {
		return nil, fmt.Errorf("failed to encode constructor arguments: %w", err)
	}
	return packed, nil
}

// ParseValue converts a textual argument into the Go value the ABI packer
// expects for typ. Arrays are given as JSON, e.g. ["0xab..", "0xcd.."] or [1,2,3].
func ParseValue(typ abi.Type, raw string) (any, error) {
	raw = strings.TrimSpace(raw)

	switch typ.T {
	case abi.AddressTy:
		if !common.IsHexAddress(raw) {
			return nil, fmt.Errorf("%q is not a hex address", raw)
		}
		return common.HexToAddress(raw), nil

	case abi.BoolTy:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%q is not a boolean", raw)
		}
		return b, nil

	case abi.StringTy:
		return raw, nil

	case abi.BytesTy:
		b, err := decodeHex(raw)
		if err != nil {
			return nil, err
		}
		return b, nil

	case abi.FixedBytesTy:
		b, err := decodeHex(raw)
		if err != nil {
			return nil, err
		}
		if len(b) > typ.Size {
			return nil, fmt.Errorf("value has %d bytes, %s holds %d", len(b), typ.String(), typ.Size)
		}
		arr := reflect.New(typ.GetType()).Elem()
		reflect.Copy(arr, reflect.ValueOf(b))
		return arr.Interface(), nil

	case abi.IntTy, abi.UintTy:
		return parseInteger(typ, raw)

	case abi.SliceTy, abi.ArrayTy:
		return parseList(typ, raw)

	default:
		return nil, fmt.Errorf("parameter type %s is not supported", typ.String())
	}
}

func decodeHex(raw string) ([]byte, error) {
	if !strings.HasPrefix(raw, "0x") && !strings.HasPrefix(raw, "0X") {
		raw = "0x" + raw
	}
	b, err := hexutil.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%q is not hex: %w", raw, err)
	}
	return b, nil
}

func parseInteger(typ abi.Type, raw string) (any, error) {
	n, ok := new(big.Int).SetString(raw, 0)
	if !ok {
		return nil, fmt.Errorf("%q is not an integer", raw)
	}

	if typ.T == abi.UintTy {
		if n.Sign() < 0 {
			return nil, fmt.Errorf("%s cannot be negative", typ.String())
		}
		if n.BitLen() > typ.Size {
			return nil, fmt.Errorf("%s overflows %s", raw, typ.String())
		}
	} else {
		limit := new(big.Int).Lsh(big.NewInt(1), uint(typ.Size-1))
		if n.Cmp(limit) >= 0 || n.Cmp(new(big.Int).Neg(limit)) < 0 {
			return nil, fmt.Errorf("%s overflows %s", raw, typ.String())
		}
	}

	// The packer wants native integers up to 64 bits and *big.Int above
	goType := typ.GetType()
	if goType == reflect.TypeOf((*big.Int)(nil)) {
		return n, nil
	}
	if typ.T == abi.UintTy {
		return reflect.ValueOf(n.Uint64()).Convert(goType).Interface(), nil
	}
	return reflect.ValueOf(n.Int64()).Convert(goType).Interface(), nil
}

func parseList(typ abi.Type, raw string) (any, error) {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("%s expects a JSON array, got %q", typ.String(), raw)
	}
	if typ.T == abi.ArrayTy && len(items) != typ.Size {
		return nil, fmt.Errorf("%s expects %d elements, got %d", typ.String(), typ.Size, len(items))
	}

	var list reflect.Value
	if typ.T == abi.SliceTy {
		list = reflect.MakeSlice(typ.GetType(), len(items), len(items))
	} else {
		list = reflect.New(typ.GetType()).Elem()
	}

	for i, item := range items {
		// Elements may be JSON strings or bare literals such as numbers
		text := string(item)
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			text = s
		}

		value, err := ParseValue(*typ.Elem, text)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		list.Index(i).Set(reflect.ValueOf(value))
	}

	return list.Interface(), nil
}
