package nvlist

import "fmt"

// Pair is one decoded name-value pair. Exactly the fields matching Type are
// meaningful; the rest hold their zero value. Fixed-width numeric arrays and
// string/nested-list arrays decode lazily through their Array/StrArray/
// ListArray field's Decode method.
type Pair struct {
	Name string
	Type DataType

	Bool   bool
	Byte   uint8
	I8     int8
	U8     uint8
	I16    int16
	U16    uint16
	I32    int32
	U32    uint32
	I64    int64
	U64    uint64
	Str    string
	HrTime int64
	F64    float64
	List   *List

	ByteArray []byte
	BoolArray Array[bool]
	I8Array   Array[int8]
	U8Array   Array[uint8]
	I16Array  Array[int16]
	U16Array  Array[uint16]
	I32Array  Array[int32]
	U32Array  Array[uint32]
	I64Array  Array[int64]
	U64Array  Array[uint64]
	StrArray  StrArray
	ListArray ListArray
}

func wrongType(got, want DataType) error {
	return fmt.Errorf("nvlist: %w: have %s, want %s", ErrWrongType, got, want)
}

// GetU64 finds name and returns its Uint64 value.
func (l *List) GetU64(name string) (uint64, bool, error) {
	p, err := l.Find(name)
	if err != nil || p == nil {
		return 0, false, err
	}
	if p.Type != Uint64 {
		return 0, false, wrongType(p.Type, Uint64)
	}
	return p.U64, true, nil
}

// GetI64 finds name and returns its Int64 value.
func (l *List) GetI64(name string) (int64, bool, error) {
	p, err := l.Find(name)
	if err != nil || p == nil {
		return 0, false, err
	}
	if p.Type != Int64 {
		return 0, false, wrongType(p.Type, Int64)
	}
	return p.I64, true, nil
}

// GetStr finds name and returns its String value.
func (l *List) GetStr(name string) (string, bool, error) {
	p, err := l.Find(name)
	if err != nil || p == nil {
		return "", false, err
	}
	if p.Type != String {
		return "", false, wrongType(p.Type, String)
	}
	return p.Str, true, nil
}

// GetBoolValue finds name and returns its BooleanValue value.
func (l *List) GetBoolValue(name string) (bool, bool, error) {
	p, err := l.Find(name)
	if err != nil || p == nil {
		return false, false, err
	}
	if p.Type != BooleanValue {
		return false, false, wrongType(p.Type, BooleanValue)
	}
	return p.Bool, true, nil
}

// HasFlag finds name and reports whether it is present as a Boolean flag
// (count-0, value-less) pair.
func (l *List) HasFlag(name string) (bool, error) {
	p, err := l.Find(name)
	if err != nil || p == nil {
		return false, err
	}
	return p.Type == Boolean, nil
}

// GetNvList finds name and returns its nested List value.
func (l *List) GetNvList(name string) (*List, bool, error) {
	p, err := l.Find(name)
	if err != nil || p == nil {
		return nil, false, err
	}
	if p.Type != NvList {
		return nil, false, wrongType(p.Type, NvList)
	}
	return p.List, true, nil
}

// GetU64Array finds name and decodes its Uint64Array value.
func (l *List) GetU64Array(name string) ([]uint64, bool, error) {
	p, err := l.Find(name)
	if err != nil || p == nil {
		return nil, false, err
	}
	if p.Type != Uint64Array {
		return nil, false, wrongType(p.Type, Uint64Array)
	}
	v, err := p.U64Array.Decode()
	return v, true, err
}

// GetStrArray finds name and decodes its StringArray value.
func (l *List) GetStrArray(name string) ([]string, bool, error) {
	p, err := l.Find(name)
	if err != nil || p == nil {
		return nil, false, err
	}
	if p.Type != StringArray {
		return nil, false, wrongType(p.Type, StringArray)
	}
	v, err := p.StrArray.Decode()
	return v, true, err
}
