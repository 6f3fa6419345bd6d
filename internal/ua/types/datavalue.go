package types

// DataValue presence bits — spec §3 "DataValue".
const (
	dataValueHasValue             byte = 0x01
	dataValueHasStatus            byte = 0x02
	dataValueHasSourceTimestamp   byte = 0x04
	dataValueHasServerTimestamp   byte = 0x08
	dataValueHasSourcePicoseconds byte = 0x10
	dataValueHasServerPicoseconds byte = 0x20
)

// DataValue bundles a value with its quality status and the timestamps
// that describe when it was produced (spec §3). Every field is
// independently optional. A picosecond field is only meaningful, and is
// only ever encoded or decoded, alongside its matching timestamp.
type DataValue struct {
	Value    *Variant
	Status   StatusCode
	HasStatus bool

	SourceTimestamp    DateTime
	HasSourceTimestamp bool
	SourcePicoseconds  int16

	ServerTimestamp    DateTime
	HasServerTimestamp bool
	ServerPicoseconds  int16
}

func (d *DataValue) encodingMask() byte {
	mask := byte(0)
	if d.Value != nil {
		mask |= dataValueHasValue
	}
	if d.HasStatus {
		mask |= dataValueHasStatus
	}
	if d.HasSourceTimestamp {
		mask |= dataValueHasSourceTimestamp
		if d.SourcePicoseconds != 0 {
			mask |= dataValueHasSourcePicoseconds
		}
	}
	if d.HasServerTimestamp {
		mask |= dataValueHasServerTimestamp
		if d.ServerPicoseconds != 0 {
			mask |= dataValueHasServerPicoseconds
		}
	}
	return mask
}

// Encode writes d's presence mask followed by each present field. A
// picosecond field is only written when its timestamp is also present,
// matching the decode-time suppression rule.
func (d *DataValue) Encode(w Writer) (int, error) {
	mask := d.encodingMask()
	total, err := WriteByte(w, mask)
	if err != nil {
		return total, err
	}
	if mask&dataValueHasValue != 0 {
		c, err := d.Value.Encode(w)
		total += c
		if err != nil {
			return total, err
		}
	}
	if mask&dataValueHasStatus != 0 {
		c, err := d.Status.Encode(w)
		total += c
		if err != nil {
			return total, err
		}
	}
	if mask&dataValueHasSourceTimestamp != 0 {
		c, err := d.SourceTimestamp.Encode(w)
		total += c
		if err != nil {
			return total, err
		}
		if mask&dataValueHasSourcePicoseconds != 0 {
			c, err := WriteInt16(w, d.SourcePicoseconds)
			total += c
			if err != nil {
				return total, err
			}
		}
	}
	if mask&dataValueHasServerTimestamp != 0 {
		c, err := d.ServerTimestamp.Encode(w)
		total += c
		if err != nil {
			return total, err
		}
		if mask&dataValueHasServerPicoseconds != 0 {
			c, err := WriteInt16(w, d.ServerPicoseconds)
			total += c
			if err != nil {
				return total, err
			}
		}
	}
	return total, nil
}

// DecodeDataValue reads a DataValue from r. A picosecond field present in
// the mask but whose matching timestamp bit is absent is impossible by
// construction (the mask is produced by Encode), but DecodeDataValue
// still only reads picoseconds nested inside their timestamp's branch, so
// a hand-crafted buffer cannot desynchronize the field order.
func DecodeDataValue(r Reader, limits EncodingLimits) (*DataValue, error) {
	mask, err := ReadByte(r)
	if err != nil {
		return nil, err
	}
	d := &DataValue{}
	if mask&dataValueHasValue != 0 {
		v, err := DecodeVariant(r, limits)
		if err != nil {
			return nil, err
		}
		d.Value = v
	}
	if mask&dataValueHasStatus != 0 {
		d.Status, err = DecodeStatusCode(r)
		if err != nil {
			return nil, err
		}
		d.HasStatus = true
	}
	if mask&dataValueHasSourceTimestamp != 0 {
		d.SourceTimestamp, err = DecodeDateTime(r)
		if err != nil {
			return nil, err
		}
		d.HasSourceTimestamp = true
		if mask&dataValueHasSourcePicoseconds != 0 {
			d.SourcePicoseconds, err = ReadInt16(r)
			if err != nil {
				return nil, err
			}
		}
	}
	if mask&dataValueHasServerTimestamp != 0 {
		d.ServerTimestamp, err = DecodeDateTime(r)
		if err != nil {
			return nil, err
		}
		d.HasServerTimestamp = true
		if mask&dataValueHasServerPicoseconds != 0 {
			d.ServerPicoseconds, err = ReadInt16(r)
			if err != nil {
				return nil, err
			}
		}
	}
	return d, nil
}
