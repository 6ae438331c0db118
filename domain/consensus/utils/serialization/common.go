package serialization

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
)

// errNoEncodingForType signifies that there's no encoding for the given type.
var errNoEncodingForType = errors.New("there's no encoding for this type")

var errMalformed = errors.New("errMalformed")

// MaxVarBytesLength is the maximum length of a length-prefixed byte field.
const MaxVarBytesLength = 32 * 1024

// WriteElement writes the little endian representation of element to w.
func WriteElement(w io.Writer, element interface{}) error {
	var err error
	switch e := element.(type) {
	case uint8:
		_, err = w.Write([]byte{e})
	case uint16:
		var buf [2]byte
		binary.LittleEndian.PutUint16(buf[:], e)
		_, err = w.Write(buf[:])
	case uint32:
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], e)
		_, err = w.Write(buf[:])
	case uint64:
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], e)
		_, err = w.Write(buf[:])
	case int64:
		return WriteElement(w, uint64(e))
	case bool:
		if e {
			_, err = w.Write([]byte{0x01})
		} else {
			_, err = w.Write([]byte{0x00})
		}
	case externalapi.MilestoneIndex:
		return WriteElement(w, uint32(e))
	case externalapi.PayloadType:
		return WriteElement(w, uint32(e))
	case externalapi.BlockID:
		_, err = w.Write(e[:])
	case externalapi.TransactionID:
		_, err = w.Write(e[:])
	case externalapi.MilestoneID:
		_, err = w.Write(e[:])
	case externalapi.Address:
		_, err = w.Write(e[:])
	case externalapi.OutputID:
		_, err = w.Write(e.Bytes())
	case [32]byte:
		_, err = w.Write(e[:])
	case [64]byte:
		_, err = w.Write(e[:])
	default:
		return errors.Wrapf(errNoEncodingForType, "couldn't find a way to write type %T", element)
	}
	return errors.WithStack(err)
}

// WriteElements writes multiple items to w. It is equivalent to multiple
// calls to WriteElement.
func WriteElements(w io.Writer, elements ...interface{}) error {
	for _, element := range elements {
		err := WriteElement(w, element)
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteVarBytes writes a uint32 length prefix followed by data.
func WriteVarBytes(w io.Writer, data []byte) error {
	if len(data) > MaxVarBytesLength {
		return errors.Errorf("byte field of length %d is longer than the maximum %d",
			len(data), MaxVarBytesLength)
	}
	err := WriteElement(w, uint32(len(data)))
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return errors.WithStack(err)
}

// ReadElement reads the next sequence of bytes from r using little endian
// depending on the concrete type of element pointed to.
func ReadElement(r io.Reader, element interface{}) error {
	switch e := element.(type) {
	case *uint8:
		var buf [1]byte
		if err := readFull(r, buf[:]); err != nil {
			return err
		}
		*e = buf[0]
	case *uint16:
		var buf [2]byte
		if err := readFull(r, buf[:]); err != nil {
			return err
		}
		*e = binary.LittleEndian.Uint16(buf[:])
	case *uint32:
		var buf [4]byte
		if err := readFull(r, buf[:]); err != nil {
			return err
		}
		*e = binary.LittleEndian.Uint32(buf[:])
	case *uint64:
		var buf [8]byte
		if err := readFull(r, buf[:]); err != nil {
			return err
		}
		*e = binary.LittleEndian.Uint64(buf[:])
	case *int64:
		var value uint64
		if err := ReadElement(r, &value); err != nil {
			return err
		}
		*e = int64(value)
	case *bool:
		var value uint8
		if err := ReadElement(r, &value); err != nil {
			return err
		}
		switch value {
		case 0x00:
			*e = false
		case 0x01:
			*e = true
		default:
			return errors.Wrapf(errMalformed, "in order to keep serialization canonical, true has to"+
				" always be 0x01")
		}
	case *externalapi.MilestoneIndex:
		var value uint32
		if err := ReadElement(r, &value); err != nil {
			return err
		}
		*e = externalapi.MilestoneIndex(value)
	case *externalapi.PayloadType:
		var value uint32
		if err := ReadElement(r, &value); err != nil {
			return err
		}
		*e = externalapi.PayloadType(value)
	case *externalapi.BlockID:
		return readFull(r, e[:])
	case *externalapi.TransactionID:
		return readFull(r, e[:])
	case *externalapi.MilestoneID:
		return readFull(r, e[:])
	case *externalapi.Address:
		return readFull(r, e[:])
	case *externalapi.OutputID:
		var buf [externalapi.OutputIDSize]byte
		if err := readFull(r, buf[:]); err != nil {
			return err
		}
		outputID, err := externalapi.NewOutputIDFromBytes(buf[:])
		if err != nil {
			return err
		}
		*e = outputID
	case *[32]byte:
		return readFull(r, e[:])
	case *[64]byte:
		return readFull(r, e[:])
	default:
		return errors.Wrapf(errNoEncodingForType, "couldn't find a way to read type %T", element)
	}
	return nil
}

// ReadElements reads multiple items from r. It is equivalent to multiple
// calls to ReadElement.
func ReadElements(r io.Reader, elements ...interface{}) error {
	for _, element := range elements {
		err := ReadElement(r, element)
		if err != nil {
			return err
		}
	}
	return nil
}

// ReadVarBytes reads a byte field written by WriteVarBytes.
func ReadVarBytes(r io.Reader) ([]byte, error) {
	var length uint32
	err := ReadElement(r, &length)
	if err != nil {
		return nil, err
	}
	if length > MaxVarBytesLength {
		return nil, errors.Wrapf(errMalformed, "byte field of length %d is longer than the maximum %d",
			length, MaxVarBytesLength)
	}
	data := make([]byte, length)
	err = readFull(r, data)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func readFull(r io.Reader, buf []byte) error {
	_, err := io.ReadFull(r, buf)
	return errors.WithStack(err)
}

// IsMalformedError returns whether the error indicates a malformed data source
func IsMalformedError(err error) bool {
	return errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) || errors.Is(err, errMalformed)
}
