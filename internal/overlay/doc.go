// Package overlay builds the ffmpeg video filter chains that draw text onto a
// program: the welcome card, the per-chunk "Ads in Ns" countdown, and the
// whole-program watermark lines.
//
// Builders produce structured values (Box, Text, Scale) grouped in a Chain.
// Nothing is escaped until Chain.String serializes the chain, and that
// serializer is the only place user text is escaped. Keeping escaping in one
// spot means a colon or apostrophe in an operator's welcome text can never
// split an option or end a quoted value early.
package overlay
