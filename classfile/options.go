package classfile

// ParseOptions controls two implementation choices: whether trailing bytes
// after the class are an error, and whether pool indices stored inside
// decoded structures are validated eagerly.
//
// Both default to false (permissive). A Source that reports a known length
// is always checked for trailing bytes, whatever Strict says.
type ParseOptions struct {
	// Strict, when true, requires the source to be fully consumed after a
	// successful parse even when the Source does not report a known length,
	// and validates every this_class/super_class/interface/field/method name
	// and descriptor index against the pool once the class is decoded
	// instead of deferring to consumers.
	Strict bool
}
