package classfile

type ConstantPoolEntry interface {
	Tag() ConstantTag
}

type ConstantUtf8Info struct {
	Value string
}

func (c *ConstantUtf8Info) Tag() ConstantTag { return ConstantUtf8 }

type ConstantIntegerInfo struct {
	Value int32
}

func (c *ConstantIntegerInfo) Tag() ConstantTag { return ConstantInteger }

type ConstantFloatInfo struct {
	Value float32
}

func (c *ConstantFloatInfo) Tag() ConstantTag { return ConstantFloat }

type ConstantLongInfo struct {
	Value int64
}

func (c *ConstantLongInfo) Tag() ConstantTag { return ConstantLong }

type ConstantDoubleInfo struct {
	Value float64
}

func (c *ConstantDoubleInfo) Tag() ConstantTag { return ConstantDouble }

type ConstantClassInfo struct {
	NameIndex uint16
}

func (c *ConstantClassInfo) Tag() ConstantTag { return ConstantClass }

type ConstantStringInfo struct {
	StringIndex uint16
}

func (c *ConstantStringInfo) Tag() ConstantTag { return ConstantString }

type ConstantFieldrefInfo struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (c *ConstantFieldrefInfo) Tag() ConstantTag { return ConstantFieldref }

type ConstantMethodrefInfo struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (c *ConstantMethodrefInfo) Tag() ConstantTag { return ConstantMethodref }

type ConstantInterfaceMethodrefInfo struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (c *ConstantInterfaceMethodrefInfo) Tag() ConstantTag { return ConstantInterfaceMethodref }

type ConstantNameAndTypeInfo struct {
	NameIndex       uint16
	DescriptorIndex uint16
}

func (c *ConstantNameAndTypeInfo) Tag() ConstantTag { return ConstantNameAndType }

type ConstantMethodHandleInfo struct {
	ReferenceKind  MethodHandleKind
	ReferenceIndex uint16
}

func (c *ConstantMethodHandleInfo) Tag() ConstantTag { return ConstantMethodHandle }

type ConstantMethodTypeInfo struct {
	DescriptorIndex uint16
}

func (c *ConstantMethodTypeInfo) Tag() ConstantTag { return ConstantMethodType }

type ConstantInvokeDynamicInfo struct {
	BootstrapMethodAttrIndex uint16
	NameAndTypeIndex         uint16
}

func (c *ConstantInvokeDynamicInfo) Tag() ConstantTag { return ConstantInvokeDynamic }

type ConstantModuleInfo struct {
	NameIndex uint16
}

func (c *ConstantModuleInfo) Tag() ConstantTag { return ConstantModule }

type ConstantPackageInfo struct {
	NameIndex uint16
}

func (c *ConstantPackageInfo) Tag() ConstantTag { return ConstantPackage }

// ConstantPool is indexed logically (1-based, as on the wire). A Long or
// Double entry occupies two logical slots but only one physical one; the
// slot immediately after such an entry is stored as nil, which doubles as
// the precomputed skip map: At rejects a nil slot the same way it rejects
// an out-of-range index.
type ConstantPool []ConstantPoolEntry

// Len returns the pool's logical length, i.e. constant_pool_count - 1.
func (cp ConstantPool) Len() int { return len(cp) }

// At dereferences a 1-based logical index, failing on zero, on an
// out-of-range index, and on the second slot of a Long/Double entry.
func (cp ConstantPool) At(index uint16) (ConstantPoolEntry, error) {
	if index == 0 || int(index) > len(cp) {
		return nil, &PoolIndexError{Index: index, Reason: "out of range"}
	}
	entry := cp[index-1]
	if entry == nil {
		return nil, &PoolIndexError{Index: index, Reason: "second slot of a Long/Double entry"}
	}
	return entry, nil
}

// Utf8At dereferences index and requires it to name a Utf8 constant; this is
// the one case the decoder itself must validate strictly, since attribute
// dispatch depends on resolving the name.
func (cp ConstantPool) Utf8At(index uint16) (string, error) {
	entry, err := cp.At(index)
	if err != nil {
		return "", err
	}
	utf8, ok := entry.(*ConstantUtf8Info)
	if !ok {
		return "", &PoolIndexError{Index: index, Reason: "not a Utf8 constant"}
	}
	return utf8.Value, nil
}

func (cp ConstantPool) GetUtf8(index uint16) string {
	if index == 0 || int(index) > len(cp) {
		return ""
	}
	if entry, ok := cp[index-1].(*ConstantUtf8Info); ok {
		return entry.Value
	}
	return ""
}

func (cp ConstantPool) GetClassName(index uint16) string {
	if index == 0 || int(index) > len(cp) {
		return ""
	}
	if entry, ok := cp[index-1].(*ConstantClassInfo); ok {
		return cp.GetUtf8(entry.NameIndex)
	}
	return ""
}

func (cp ConstantPool) GetNameAndType(index uint16) (name, descriptor string) {
	if index == 0 || int(index) > len(cp) {
		return "", ""
	}
	if entry, ok := cp[index-1].(*ConstantNameAndTypeInfo); ok {
		return cp.GetUtf8(entry.NameIndex), cp.GetUtf8(entry.DescriptorIndex)
	}
	return "", ""
}

func (cp ConstantPool) GetString(index uint16) string {
	if index == 0 || int(index) > len(cp) {
		return ""
	}
	if entry, ok := cp[index-1].(*ConstantStringInfo); ok {
		return cp.GetUtf8(entry.StringIndex)
	}
	return ""
}

// decodeConstantPoolEntry reads a single tagged entry at its logical index.
// The wide return tells the caller whether this entry occupies the next
// logical slot too (Long and Double do).
func decodeConstantPoolEntry(r *reader, index uint16) (entry ConstantPoolEntry, wide bool, err error) {
	tag := ConstantTag(r.readU1())
	if r.err != nil {
		return nil, false, r.err
	}

	switch tag {
	case ConstantUtf8:
		length := r.readU2()
		raw := r.readBytes(int(length))
		if r.err != nil {
			return nil, false, r.err
		}
		entry = &ConstantUtf8Info{Value: decodeModifiedUtf8(raw)}

	case ConstantInteger:
		entry = &ConstantIntegerInfo{Value: r.readI4()}

	case ConstantFloat:
		entry = &ConstantFloatInfo{Value: r.readF4()}

	case ConstantLong:
		entry = &ConstantLongInfo{Value: r.readI8()}
		wide = true

	case ConstantDouble:
		entry = &ConstantDoubleInfo{Value: r.readF8()}
		wide = true

	case ConstantClass:
		entry = &ConstantClassInfo{NameIndex: r.readU2()}

	case ConstantString:
		entry = &ConstantStringInfo{StringIndex: r.readU2()}

	case ConstantFieldref:
		entry = &ConstantFieldrefInfo{ClassIndex: r.readU2(), NameAndTypeIndex: r.readU2()}

	case ConstantMethodref:
		entry = &ConstantMethodrefInfo{ClassIndex: r.readU2(), NameAndTypeIndex: r.readU2()}

	case ConstantInterfaceMethodref:
		entry = &ConstantInterfaceMethodrefInfo{ClassIndex: r.readU2(), NameAndTypeIndex: r.readU2()}

	case ConstantNameAndType:
		entry = &ConstantNameAndTypeInfo{NameIndex: r.readU2(), DescriptorIndex: r.readU2()}

	case ConstantMethodHandle:
		entry = &ConstantMethodHandleInfo{ReferenceKind: MethodHandleKind(r.readU1()), ReferenceIndex: r.readU2()}

	case ConstantMethodType:
		entry = &ConstantMethodTypeInfo{DescriptorIndex: r.readU2()}

	case ConstantInvokeDynamic:
		entry = &ConstantInvokeDynamicInfo{BootstrapMethodAttrIndex: r.readU2(), NameAndTypeIndex: r.readU2()}

	case ConstantModule:
		entry = &ConstantModuleInfo{NameIndex: r.readU2()}

	case ConstantPackage:
		entry = &ConstantPackageInfo{NameIndex: r.readU2()}

	default:
		return nil, false, &UnknownConstantTagError{Index: index, Tag: tag}
	}

	if r.err != nil {
		return nil, false, r.err
	}
	return entry, wide, nil
}
