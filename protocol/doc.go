// Package protocol provides an object representation of a socket.io v5 packet
// and the parsers that put it on the wire.
//
// The default JSON parser reads and writes the text format:
//
//     <packet type>[<# of binary attachments>-][<namespace>,][<acknowledgment id>][JSON-stringified payload without binary]
//     [<binary attachment>]
//
// or as a real example:
//
//     51-/admin,456["project:delete",{"_placeholder":true,"num":0}]
//
// this is with the API:
//
//     Packet.Type
//     Packet.Attachments
//     Packet.Namespace
//     Packet.AckID
//     Packet.Data
//
// The msgpack parser writes the same packet as a single binary msgpack map.
// Neither parser touches binary attachments, those travel as their own
// engine.io messages.
package protocol
