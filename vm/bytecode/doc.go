// Package bytecode decodes the serialized module format spec §6.1/§6.2
// describe: member/function/record-template/export lists with
// strictly-smaller-id forward references, consumed from an in-memory
// byte slice (there is no on-disk or wire format at this layer; the host
// decides how bytes reach the process). Grounded on internal/format's
// fixed-offset binary reader style (big-endian, explicit size constants)
// and internal/reader/value.go's strict-UTF-8 string decoding via
// golang.org/x/text/encoding/unicode.
package bytecode
