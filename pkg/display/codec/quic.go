package codec

// DecodeQUIC reports SpiceImage type QUIC as unsupported. QUIC (the SPICE
// image codec, unrelated to the QUIC transport protocol) is explicitly
// optional (§4.5 "may be reported unsupported"); no decoder for it exists
// anywhere in the example corpus, and implementing one from scratch is out
// of scope. Callers degrade to black fill on this error (§7).
func DecodeQUIC(width, height int, payload []byte) (*ARGBImage, error) {
	return nil, &DecodeError{Format: "quic", Detail: "QUIC image codec is not supported"}
}
