package protocol

import "github.com/vango-dev/filtersync/pkg/querycodec"

// Value wire tags.
const (
	valueNull   byte = 0x00
	valueString byte = 0x01
	valueInt    byte = 0x02
	valueFloat  byte = 0x03
	valueBool   byte = 0x04
)

// WriteRecord appends a record as [count: varint] followed by
// [key: string][value] for each field in order.
//
// Value encoding:
//
//	null:   [0x00]
//	string: [0x01][len-prefixed string]
//	int:    [0x02][svarint]
//	float:  [0x03][float64 big-endian]
//	bool:   [0x04][0x00|0x01]
func (e *Encoder) WriteRecord(r querycodec.Record) {
	fields := r.Fields()
	e.WriteUvarint(uint64(len(fields)))
	for _, f := range fields {
		e.WriteString(f.Key)
		e.writeValue(f.Value)
	}
}

func (e *Encoder) writeValue(v querycodec.Value) {
	switch v.Kind() {
	case querycodec.KindString:
		s, _ := v.Str()
		e.WriteByte(valueString)
		e.WriteString(s)
	case querycodec.KindNumber:
		if n, ok := v.IntValue(); ok {
			e.WriteByte(valueInt)
			e.WriteSvarint(n)
			return
		}
		f, _ := v.FloatValue()
		e.WriteByte(valueFloat)
		e.WriteFloat64(f)
	case querycodec.KindBool:
		b, _ := v.BoolValue()
		e.WriteByte(valueBool)
		e.WriteBool(b)
	default:
		e.WriteByte(valueNull)
	}
}

// ReadRecord reads a record written by WriteRecord.
func (d *Decoder) ReadRecord() (querycodec.Record, error) {
	count, err := d.ReadCount(MaxFieldCount)
	if err != nil {
		return querycodec.Record{}, err
	}

	fields := make([]querycodec.Field, 0, count)
	for i := 0; i < count; i++ {
		key, err := d.ReadString()
		if err != nil {
			return querycodec.Record{}, err
		}
		v, err := d.readValue()
		if err != nil {
			return querycodec.Record{}, err
		}
		fields = append(fields, querycodec.F(key, v))
	}
	return querycodec.NewRecord(fields...), nil
}

func (d *Decoder) readValue() (querycodec.Value, error) {
	tag, err := d.ReadByte()
	if err != nil {
		return querycodec.Value{}, err
	}

	switch tag {
	case valueNull:
		return querycodec.Null(), nil
	case valueString:
		s, err := d.ReadString()
		if err != nil {
			return querycodec.Value{}, err
		}
		return querycodec.String(s), nil
	case valueInt:
		n, err := d.ReadSvarint()
		if err != nil {
			return querycodec.Value{}, err
		}
		return querycodec.Int(n), nil
	case valueFloat:
		f, err := d.ReadFloat64()
		if err != nil {
			return querycodec.Value{}, err
		}
		return querycodec.Float(f), nil
	case valueBool:
		b, err := d.ReadBool()
		if err != nil {
			return querycodec.Value{}, err
		}
		return querycodec.Bool(b), nil
	default:
		return querycodec.Value{}, ErrUnknownKind
	}
}
