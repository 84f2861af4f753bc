// Package tftp declares the Trivial File Transfer Protocol header kind: a
// 2-byte opcode followed by an opcode-dependent tail, the framework's
// canonical polymorphic-reparse example (spec'd directly off RFC 1350 §5).
// The opcode selects one of five subkinds via header.NewDiscriminatorReparse
// rather than gopcap's hand-written per-type switch (gopcap has no TFTP
// support at all; this catalog package is new).
package tftp

import (
	"github.com/picatz/packetgen/field"
	"github.com/picatz/packetgen/header"
)

// ID is the binding-table identifier for the TFTP header kind.
const ID header.ID = "tftp"

const (
	OpRRQ   = 1
	OpWRQ   = 2
	OpDATA  = 3
	OpACK   = 4
	OpERROR = 5
)

// Kind is the TFTP base header: just the opcode. Reading it re-parses the
// tail as one of RRQKind/WRQKind/DataKind/AckKind/ErrorKind depending on
// the opcode's value.
var Kind = header.NewKind("TFTP", ID)

// rrqTail, wrqTail, dataTail, ackTail and errorTail are the subkinds'
// field lists *without* the opcode field, used as NewDiscriminatorReparse's
// read targets: by the time reparse runs, the base Kind's own field loop
// has already consumed the opcode bytes, so a variant re-reading them would
// double-count. RRQKind etc. below are the same field lists with opcode
// merged back in, for building a complete message with packet.Add.
var (
	rrqTail   = header.NewKind("TFTP-RRQ-tail", "tftp-rrq-tail")
	wrqTail   = header.NewKind("TFTP-WRQ-tail", "tftp-wrq-tail")
	dataTail  = header.NewKind("TFTP-DATA-tail", "tftp-data-tail")
	ackTail   = header.NewKind("TFTP-ACK-tail", "tftp-ack-tail")
	errorTail = header.NewKind("TFTP-ERROR-tail", "tftp-error-tail")
)

// RRQKind and WRQKind carry a null-terminated filename and transfer mode.
var RRQKind, WRQKind *header.Kind

// DataKind carries a block number and the raw data for that block.
var DataKind *header.Kind

// AckKind carries only the block number being acknowledged.
var AckKind *header.Kind

// ErrorKind carries an error code and a null-terminated message.
var ErrorKind *header.Kind

func init() {
	Kind.DefineField(header.FieldDef{Name: "opcode", Codec: field.Uint16BE, Default: uint16(OpRRQ)})

	rrqTail.DefineField(header.FieldDef{Name: "filename", Codec: field.CString{}})
	rrqTail.DefineField(header.FieldDef{Name: "mode", Codec: field.CString{}, Default: "octet"})

	wrqTail.DefineField(header.FieldDef{Name: "filename", Codec: field.CString{}})
	wrqTail.DefineField(header.FieldDef{Name: "mode", Codec: field.CString{}, Default: "octet"})

	dataTail.DefineField(header.FieldDef{Name: "block_num", Codec: field.Uint16BE})
	dataTail.DefineField(header.FieldDef{Name: "data", Codec: field.Opaque{}})

	ackTail.DefineField(header.FieldDef{Name: "block_num", Codec: field.Uint16BE})

	errorTail.DefineField(header.FieldDef{Name: "error_code", Codec: field.Uint16BE})
	errorTail.DefineField(header.FieldDef{Name: "error_msg", Codec: field.CString{}})

	RRQKind = rrqTail.WithBase(Kind)
	RRQKind.UpdateField("opcode", "default", uint16(OpRRQ))
	WRQKind = wrqTail.WithBase(Kind)
	WRQKind.UpdateField("opcode", "default", uint16(OpWRQ))
	DataKind = dataTail.WithBase(Kind)
	DataKind.UpdateField("opcode", "default", uint16(OpDATA))
	AckKind = ackTail.WithBase(Kind)
	AckKind.UpdateField("opcode", "default", uint16(OpACK))
	ErrorKind = errorTail.WithBase(Kind)
	ErrorKind.UpdateField("opcode", "default", uint16(OpERROR))

	Kind.SetReparse(header.NewDiscriminatorReparse("opcode",
		header.Variant{Match: uint16(OpRRQ), Kind: rrqTail},
		header.Variant{Match: uint16(OpWRQ), Kind: wrqTail},
		header.Variant{Match: uint16(OpDATA), Kind: dataTail},
		header.Variant{Match: uint16(OpACK), Kind: ackTail},
		header.Variant{Match: uint16(OpERROR), Kind: errorTail},
	))
}
