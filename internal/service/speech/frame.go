package speech

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
)

// Volcengine speech services exchange binary frames over websocket:
// a 4 byte header, optional sequence and event metadata, then a
// length-prefixed payload. All integers are big endian.

const protocolVersion = 0b0001

type messageType uint8

const (
	fullClientRequest     messageType = 0b0001
	audioOnlyRequest      messageType = 0b0010
	fullServerResponse    messageType = 0b1001
	audioOnlyServerResult messageType = 0b1011
	serverError           messageType = 0b1111
)

type messageFlags uint8

const (
	flagNoSequence       messageFlags = 0b0000
	flagPositiveSequence messageFlags = 0b0001
	flagLastNoSequence   messageFlags = 0b0010
	flagNegativeSequence messageFlags = 0b0011
	flagWithEvent        messageFlags = 0b0100

	sequenceMask messageFlags = 0b0011
)

type serialization uint8

const (
	serializationNone serialization = 0b0000
	serializationJSON serialization = 0b0001
)

type compression uint8

const (
	compressionNone compression = 0b0000
	compressionGzip compression = 0b0001
)

type eventType int32

const (
	eventStartConnection    eventType = 1
	eventFinishConnection   eventType = 2
	eventConnectionStarted  eventType = 50
	eventConnectionFailed   eventType = 51
	eventConnectionFinished eventType = 52
	eventSessionStarted     eventType = 150
	eventSessionFinished    eventType = 152
	eventSessionFailed      eventType = 153
)

// frame is one decoded protocol message.
type frame struct {
	msgType       messageType
	flags         messageFlags
	serialization serialization
	compression   compression
	sequence      int32
	event         eventType
	sessionID     string
	connectID     string
	errorCode     uint32
	payload       []byte
}

// newRequestFrame builds the JSON frame that opens a session.
func newRequestFrame(payload []byte, comp compression) *frame {
	return &frame{
		msgType:       fullClientRequest,
		flags:         flagNoSequence,
		serialization: serializationJSON,
		compression:   comp,
		payload:       payload,
	}
}

// newAudioFrame builds an audio chunk. The last chunk carries a negated
// sequence (or the last-packet flag when sequencing is off).
func newAudioFrame(chunk []byte, seq int32, last bool, comp compression) *frame {
	f := &frame{
		msgType:       audioOnlyRequest,
		serialization: serializationNone,
		compression:   comp,
		sequence:      seq,
		payload:       chunk,
	}

	switch {
	case last && seq != 0:
		f.flags = flagNegativeSequence
		f.sequence = -seq
	case last:
		f.flags = flagLastNoSequence
	case seq > 0:
		f.flags = flagPositiveSequence
	default:
		f.flags = flagNoSequence
	}
	return f
}

func (f *frame) hasSequence() bool {
	s := f.flags & sequenceMask
	return s == flagPositiveSequence || s == flagNegativeSequence
}

func (f *frame) hasEvent() bool {
	return f.flags&flagWithEvent == flagWithEvent
}

// final reports whether the sender marked this frame as the last one.
func (f *frame) final() bool {
	s := f.flags & sequenceMask
	return s == flagLastNoSequence || s == flagNegativeSequence
}

// marshal encodes the frame for the wire.
func (f *frame) marshal() []byte {
	var buf bytes.Buffer
	buf.Write([]byte{
		protocolVersion<<4 | 0b0001,
		uint8(f.msgType)<<4 | uint8(f.flags),
		uint8(f.serialization)<<4 | uint8(f.compression),
		0x00,
	})

	if f.hasSequence() {
		writeUint32(&buf, uint32(f.sequence))
	}

	if f.hasEvent() {
		writeUint32(&buf, uint32(f.event))
		if !eventSkipsSessionID(f.event) {
			writeString(&buf, f.sessionID)
		}
		if eventHasConnectID(f.event) {
			writeString(&buf, f.connectID)
		}
	}

	if f.msgType == serverError {
		writeUint32(&buf, f.errorCode)
	}

	writeUint32(&buf, uint32(len(f.payload)))
	buf.Write(f.payload)
	return buf.Bytes()
}

// parseFrame decodes one websocket message.
func parseFrame(data []byte) (*frame, error) {
	r := bytes.NewReader(data)

	header := make([]byte, 4)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if version := header[0] >> 4; version != protocolVersion {
		return nil, fmt.Errorf("unsupported protocol version: %d", version)
	}

	f := &frame{
		msgType:       messageType(header[1] >> 4),
		flags:         messageFlags(header[1] & 0x0F),
		serialization: serialization(header[2] >> 4),
		compression:   compression(header[2] & 0x0F),
	}

	// header size is counted in 4 byte words
	if extra := int(header[0]&0x0F)*4 - 4; extra > 0 {
		if _, err := r.Seek(int64(extra), io.SeekCurrent); err != nil {
			return nil, fmt.Errorf("skip extended header: %w", err)
		}
	}

	if f.hasSequence() {
		seq, err := readUint32(r)
		if err != nil {
			return nil, fmt.Errorf("read sequence: %w", err)
		}
		f.sequence = int32(seq)
	}

	if f.hasEvent() {
		event, err := readUint32(r)
		if err != nil {
			return nil, fmt.Errorf("read event: %w", err)
		}
		f.event = eventType(int32(event))

		if !eventSkipsSessionID(f.event) {
			if f.sessionID, err = readString(r); err != nil {
				return nil, fmt.Errorf("read session id: %w", err)
			}
		}
		if eventHasConnectID(f.event) {
			if f.connectID, err = readString(r); err != nil {
				return nil, fmt.Errorf("read connect id: %w", err)
			}
		}
	}

	if f.msgType == serverError {
		code, err := readUint32(r)
		if err != nil {
			return nil, fmt.Errorf("read error code: %w", err)
		}
		f.errorCode = code
	}

	size, err := readUint32(r)
	if err != nil {
		return nil, fmt.Errorf("read payload size: %w", err)
	}
	if size > 0 {
		f.payload = make([]byte, size)
		if _, err := io.ReadFull(r, f.payload); err != nil {
			return nil, fmt.Errorf("read payload (expected %d bytes): %w", size, err)
		}
	}
	return f, nil
}

// body returns the payload with compression removed.
func (f *frame) body() ([]byte, error) {
	return decompress(f.payload, f.compression)
}

func eventSkipsSessionID(event eventType) bool {
	switch event {
	case eventStartConnection, eventFinishConnection,
		eventConnectionStarted, eventConnectionFailed, eventConnectionFinished:
		return true
	}
	return false
}

func eventHasConnectID(event eventType) bool {
	switch event {
	case eventConnectionStarted, eventConnectionFailed, eventConnectionFinished:
		return true
	}
	return false
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeString(buf *bytes.Buffer, s string) {
	writeUint32(buf, uint32(len(s)))
	buf.WriteString(s)
}

func readUint32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

func readString(r io.Reader) (string, error) {
	n, err := readUint32(r)
	if err != nil || n == 0 {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}

func compress(data []byte, method compression) ([]byte, error) {
	switch method {
	case compressionNone:
		return data, nil
	case compressionGzip:
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		if _, err := zw.Write(data); err != nil {
			zw.Close()
			return nil, fmt.Errorf("gzip write: %w", err)
		}
		if err := zw.Close(); err != nil {
			return nil, fmt.Errorf("gzip close: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported compression method: %d", method)
	}
}

func decompress(data []byte, method compression) ([]byte, error) {
	switch method {
	case compressionNone:
		return data, nil
	case compressionGzip:
		if len(data) == 0 {
			return nil, nil
		}
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		defer zr.Close()
		out, err := io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("gzip read: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported compression method: %d", method)
	}
}
