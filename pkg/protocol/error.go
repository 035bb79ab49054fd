package protocol

import "github.com/vango-dev/vdiff/internal/errors"

// ErrorMessage reports a failure to the peer. Code is an error registry
// code such as "E100".
type ErrorMessage struct {
	Code    string
	Message string
	Fatal   bool
	Seq     uint64 // sequence the error refers to, 0 if none
}

// NewErrorMessage converts err into an ErrorMessage. Errors without a
// registry code are reported as E200.
func NewErrorMessage(err error, seq uint64) *ErrorMessage {
	e := errors.FromError(err, errors.CodeMalformedPayload)
	return &ErrorMessage{
		Code:    e.Code,
		Message: e.Error(),
		Fatal:   e.Fatal,
		Seq:     seq,
	}
}

// EncodeErrorMessage encodes an ErrorMessage to bytes.
func EncodeErrorMessage(em *ErrorMessage) []byte {
	e := NewEncoder()
	e.WriteString(em.Code)
	e.WriteString(em.Message)
	e.WriteBool(em.Fatal)
	e.WriteUvarint(em.Seq)
	return e.Bytes()
}

// DecodeErrorMessage decodes an ErrorMessage from bytes.
func DecodeErrorMessage(data []byte) (*ErrorMessage, error) {
	d := NewDecoder(data)
	var (
		em  ErrorMessage
		err error
	)
	if em.Code, err = d.ReadString(); err != nil {
		return nil, err
	}
	if em.Message, err = d.ReadString(); err != nil {
		return nil, err
	}
	if em.Fatal, err = d.ReadBool(); err != nil {
		return nil, err
	}
	if em.Seq, err = d.ReadUvarint(); err != nil {
		return nil, err
	}
	return &em, d.finish()
}

// Error implements the error interface.
func (em *ErrorMessage) Error() string {
	if em.Fatal {
		return "fatal: " + em.Message
	}
	return em.Message
}

// IsFatal reports whether the sender must rebuild its tree.
func (em *ErrorMessage) IsFatal() bool {
	return em.Fatal
}
