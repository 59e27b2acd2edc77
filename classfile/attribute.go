package classfile

import (
	"encoding/binary"
)

// AttributeInfo is the wire shape shared by every attribute: a name index,
// a declared length, and the raw bytes of its body. Parsed holds the
// decoded value for every name this decoder recognises; for a name it
// doesn't, Parsed is a *MiscAttribute carrying the verbatim body.
type AttributeInfo struct {
	NameIndex uint16
	Info      []byte
	Parsed    interface{}
}

// Name resolves the attribute's name by dereferencing NameIndex. Attribute
// dispatch itself requires this to succeed; Name is a convenience for
// callers that already have a successfully-parsed AttributeInfo in hand.
func (a *AttributeInfo) Name(cp ConstantPool) string {
	return cp.GetUtf8(a.NameIndex)
}

// MiscAttribute is the catch-all for an attribute name this decoder doesn't
// recognise. Its body is captured verbatim; AttributeInfo.Info already holds
// the same bytes, so MiscAttribute mostly exists to make "this name was
// unrecognised" a first-class, type-switchable fact instead of an implicit
// nil Parsed.
type MiscAttribute struct {
	NameIndex uint16
	Info      []byte
}

type CodeAttribute struct {
	MaxStack       uint16
	MaxLocals      uint16
	Code           []byte
	ExceptionTable []ExceptionTableEntry
	Attributes     []AttributeInfo
}

type ExceptionTableEntry struct {
	StartPC   uint16
	EndPC     uint16
	HandlerPC uint16
	CatchType uint16
}

type LineNumberTableAttribute struct {
	LineNumberTable []LineNumberEntry
}

type LineNumberEntry struct {
	StartPC    uint16
	LineNumber uint16
}

type LocalVariableTableAttribute struct {
	LocalVariableTable []LocalVariableEntry
}

type LocalVariableEntry struct {
	StartPC         uint16
	Length          uint16
	NameIndex       uint16
	DescriptorIndex uint16
	Index           uint16
}

type LocalVariableTypeTableAttribute struct {
	LocalVariableTypeTable []LocalVariableTypeEntry
}

type LocalVariableTypeEntry struct {
	StartPC        uint16
	Length         uint16
	NameIndex      uint16
	SignatureIndex uint16
	Index          uint16
}

type SourceFileAttribute struct {
	SourceFileIndex uint16
}

type SourceDebugExtensionAttribute struct {
	DebugExtension []byte
}

type ConstantValueAttribute struct {
	ConstantValueIndex uint16
}

type ExceptionsAttribute struct {
	ExceptionIndexTable []uint16
}

type InnerClassesAttribute struct {
	Classes []InnerClassEntry
}

type InnerClassEntry struct {
	InnerClassInfoIndex   uint16
	OuterClassInfoIndex   uint16
	InnerNameIndex        uint16
	InnerClassAccessFlags AccessFlags
}

type EnclosingMethodAttribute struct {
	ClassIndex  uint16
	MethodIndex uint16
}

type SyntheticAttribute struct{}

type DeprecatedAttribute struct{}

type SignatureAttribute struct {
	SignatureIndex uint16
}

type BootstrapMethodsAttribute struct {
	BootstrapMethods []BootstrapMethod
}

type BootstrapMethod struct {
	BootstrapMethodRef uint16
	BootstrapArguments []uint16
}

// StackMapTableAttribute is a sequence of frames, each self-describing via
// its leading tag byte (see decodeStackMapFrame).
type StackMapTableAttribute struct {
	Entries []StackMapFrame
}

// StackMapFrameKind says which of the seven frame shapes a StackMapFrame
// holds; the fields that don't apply to that shape are left at zero value.
type StackMapFrameKind uint8

const (
	FrameSame StackMapFrameKind = iota
	FrameSameLocals1StackItem
	FrameSameLocals1StackItemExtended
	FrameChop
	FrameSameFrameExtended
	FrameAppend
	FrameFull
)

type StackMapFrame struct {
	Kind        StackMapFrameKind
	Tag         uint8
	OffsetDelta uint16
	ChopCount   int // FrameChop only: number of locals removed (251 - tag)
	Locals      []VerificationTypeInfo
	Stack       []VerificationTypeInfo
}

type VerificationTypeTag uint8

const (
	VTop VerificationTypeTag = iota
	VInteger
	VFloat
	VDouble
	VLong
	VNull
	VUninitializedThis
	VObject
	VUninitialized
)

type VerificationTypeInfo struct {
	Tag        VerificationTypeTag
	CPoolIndex uint16 // VObject only
	Offset     uint16 // VUninitialized only
}

type AnnotationAttribute struct {
	Annotations []Annotation
}

type ParameterAnnotationsAttribute struct {
	Parameters [][]Annotation
}

type AnnotationDefaultAttribute struct {
	Value ElementValue
}

type Annotation struct {
	TypeIndex uint16
	Pairs     []ElementValuePair
}

type ElementValuePair struct {
	NameIndex uint16
	Value     ElementValue
}

// ElementValue is a tagged union selected by Tag, an ASCII character per the
// JVMS element_value grammar. Exactly one of the trailing fields is
// meaningful for a given Tag.
type ElementValue struct {
	Tag              byte
	ConstValueIndex  uint16         // B C D F I J S Z s
	TypeNameIndex    uint16         // e
	ConstNameIndex   uint16         // e
	ClassInfoIndex   uint16         // c
	NestedAnnotation *Annotation    // @
	ArrayValues      []ElementValue // [
}

// decodeAttribute resolves name_index, buffers exactly length bytes (the
// caller already did that and handed them in as body), and dispatches on the
// resolved name. An attribute whose name doesn't resolve to a Utf8 constant
// is malformed per spec even though its bytes were read successfully.
func decodeAttribute(nameIndex uint16, body []byte, cp ConstantPool) (AttributeInfo, error) {
	name, err := cp.Utf8At(nameIndex)
	if err != nil {
		return AttributeInfo{}, &AttributeError{Name: "<unresolved>", Detail: "name_index does not resolve to a Utf8 constant: " + err.Error()}
	}

	attr := AttributeInfo{NameIndex: nameIndex, Info: body}

	parsed, err := parseAttributeBody(name, body, cp)
	if err != nil {
		return AttributeInfo{}, err
	}
	if parsed == nil {
		attr.Parsed = &MiscAttribute{NameIndex: nameIndex, Info: body}
	} else {
		attr.Parsed = parsed
	}
	return attr, nil
}

func parseAttributeBody(name string, info []byte, cp ConstantPool) (interface{}, error) {
	switch name {
	case "ConstantValue":
		return parseU16Body(name, info, func(v uint16) interface{} { return &ConstantValueAttribute{ConstantValueIndex: v} })
	case "Code":
		return parseCodeAttribute(info, cp)
	case "StackMapTable":
		return parseStackMapTableAttribute(info)
	case "Exceptions":
		return parseExceptionsAttribute(info)
	case "InnerClasses":
		return parseInnerClassesAttribute(info)
	case "EnclosingMethod":
		return parseEnclosingMethodAttribute(info)
	case "Synthetic":
		return parseZeroLengthAttribute(name, info, func() interface{} { return &SyntheticAttribute{} })
	case "Deprecated":
		return parseZeroLengthAttribute(name, info, func() interface{} { return &DeprecatedAttribute{} })
	case "Signature":
		return parseU16Body(name, info, func(v uint16) interface{} { return &SignatureAttribute{SignatureIndex: v} })
	case "SourceFile":
		return parseU16Body(name, info, func(v uint16) interface{} { return &SourceFileAttribute{SourceFileIndex: v} })
	case "SourceDebugExtension":
		return &SourceDebugExtensionAttribute{DebugExtension: append([]byte(nil), info...)}, nil
	case "LineNumberTable":
		return parseLineNumberTableAttribute(info)
	case "LocalVariableTable":
		return parseLocalVariableTableAttribute(info)
	case "LocalVariableTypeTable":
		return parseLocalVariableTypeTableAttribute(info)
	case "RuntimeVisibleAnnotations", "RuntimeInvisibleAnnotations":
		return parseAnnotationsAttribute(name, info)
	case "RuntimeVisibleParameterAnnotations", "RuntimeInvisibleParameterAnnotations":
		return parseParameterAnnotationsAttribute(name, info)
	case "AnnotationDefault":
		return parseAnnotationDefaultAttribute(name, info)
	case "BootstrapMethods":
		return parseBootstrapMethodsAttribute(info)
	default:
		return nil, nil
	}
}

// cur is a bounds-checked cursor over an already-buffered attribute body.
// Every read is checked against the end of the slice, and the caller can
// compare cur.pos to len(cur.buf) afterwards to detect trailing bytes.
type cur struct {
	buf []byte
	pos int
}

func (c *cur) remaining() int { return len(c.buf) - c.pos }

func (c *cur) u1() (uint8, bool) {
	if c.remaining() < 1 {
		return 0, false
	}
	v := c.buf[c.pos]
	c.pos++
	return v, true
}

func (c *cur) u2() (uint16, bool) {
	if c.remaining() < 2 {
		return 0, false
	}
	v := binary.BigEndian.Uint16(c.buf[c.pos:])
	c.pos += 2
	return v, true
}

func (c *cur) u4() (uint32, bool) {
	if c.remaining() < 4 {
		return 0, false
	}
	v := binary.BigEndian.Uint32(c.buf[c.pos:])
	c.pos += 4
	return v, true
}

func (c *cur) bytes(n int) ([]byte, bool) {
	if n < 0 || c.remaining() < n {
		return nil, false
	}
	v := c.buf[c.pos : c.pos+n]
	c.pos += n
	return v, true
}

func parseU16Body(name string, info []byte, build func(uint16) interface{}) (interface{}, error) {
	c := &cur{buf: info}
	v, ok := c.u2()
	if !ok {
		return nil, &AttributeError{Name: name, Detail: "expected a 2-byte index"}
	}
	if c.remaining() != 0 {
		return nil, &TrailingAttributeBytesError{Name: name, Remaining: c.remaining()}
	}
	return build(v), nil
}

func parseZeroLengthAttribute(name string, info []byte, build func() interface{}) (interface{}, error) {
	if len(info) != 0 {
		return nil, &TrailingAttributeBytesError{Name: name, Remaining: len(info)}
	}
	return build(), nil
}

func parseCodeAttribute(info []byte, cp ConstantPool) (interface{}, error) {
	c := &cur{buf: info}
	maxStack, ok1 := c.u2()
	maxLocals, ok2 := c.u2()
	codeLength, ok3 := c.u4()
	if !ok1 || !ok2 || !ok3 {
		return nil, &AttributeError{Name: "Code", Detail: "truncated header"}
	}
	code, ok := c.bytes(int(codeLength))
	if !ok {
		return nil, &AttributeError{Name: "Code", Detail: "truncated code array"}
	}

	exceptionTableLength, ok := c.u2()
	if !ok {
		return nil, &AttributeError{Name: "Code", Detail: "truncated exception_table_length"}
	}
	exceptionTable := make([]ExceptionTableEntry, exceptionTableLength)
	for i := range exceptionTable {
		startPC, ok1 := c.u2()
		endPC, ok2 := c.u2()
		handlerPC, ok3 := c.u2()
		catchType, ok4 := c.u2()
		if !ok1 || !ok2 || !ok3 || !ok4 {
			return nil, &AttributeError{Name: "Code", Detail: "truncated exception_table entry"}
		}
		exceptionTable[i] = ExceptionTableEntry{StartPC: startPC, EndPC: endPC, HandlerPC: handlerPC, CatchType: catchType}
	}

	attributesCount, ok := c.u2()
	if !ok {
		return nil, &AttributeError{Name: "Code", Detail: "truncated attributes_count"}
	}
	attrs := make([]AttributeInfo, attributesCount)
	for i := range attrs {
		nameIndex, ok1 := c.u2()
		length, ok2 := c.u4()
		if !ok1 || !ok2 {
			return nil, &AttributeError{Name: "Code", Detail: "truncated nested attribute header"}
		}
		body, ok := c.bytes(int(length))
		if !ok {
			return nil, &AttributeError{Name: "Code", Detail: "truncated nested attribute body"}
		}
		attr, err := decodeAttribute(nameIndex, body, cp)
		if err != nil {
			return nil, err
		}
		attrs[i] = attr
	}

	if c.remaining() != 0 {
		return nil, &TrailingAttributeBytesError{Name: "Code", Remaining: c.remaining()}
	}

	return &CodeAttribute{
		MaxStack:       maxStack,
		MaxLocals:      maxLocals,
		Code:           code,
		ExceptionTable: exceptionTable,
		Attributes:     attrs,
	}, nil
}

func parseVerificationTypeInfo(c *cur) (VerificationTypeInfo, error) {
	tag, ok := c.u1()
	if !ok {
		return VerificationTypeInfo{}, &AttributeError{Name: "StackMapTable", Detail: "truncated verification_type_info"}
	}
	switch VerificationTypeTag(tag) {
	case VTop, VInteger, VFloat, VDouble, VLong, VNull, VUninitializedThis:
		return VerificationTypeInfo{Tag: VerificationTypeTag(tag)}, nil
	case VObject:
		idx, ok := c.u2()
		if !ok {
			return VerificationTypeInfo{}, &AttributeError{Name: "StackMapTable", Detail: "truncated Object verification_type_info"}
		}
		return VerificationTypeInfo{Tag: VObject, CPoolIndex: idx}, nil
	case VUninitialized:
		off, ok := c.u2()
		if !ok {
			return VerificationTypeInfo{}, &AttributeError{Name: "StackMapTable", Detail: "truncated Uninitialized verification_type_info"}
		}
		return VerificationTypeInfo{Tag: VUninitialized, Offset: off}, nil
	default:
		return VerificationTypeInfo{}, &VerificationTypeError{Tag: tag}
	}
}

func decodeStackMapFrame(c *cur) (StackMapFrame, error) {
	tag, ok := c.u1()
	if !ok {
		return StackMapFrame{}, &AttributeError{Name: "StackMapTable", Detail: "truncated frame tag"}
	}

	switch {
	case tag <= 63:
		return StackMapFrame{Kind: FrameSame, Tag: tag, OffsetDelta: uint16(tag)}, nil

	case tag <= 127:
		stack, err := parseVerificationTypeInfo(c)
		if err != nil {
			return StackMapFrame{}, err
		}
		return StackMapFrame{
			Kind:        FrameSameLocals1StackItem,
			Tag:         tag,
			OffsetDelta: uint16(tag) - 64,
			Stack:       []VerificationTypeInfo{stack},
		}, nil

	case tag <= 246:
		return StackMapFrame{}, &StackFrameError{Tag: tag, Reserved: true}

	case tag == 247:
		offsetDelta, ok := c.u2()
		if !ok {
			return StackMapFrame{}, &AttributeError{Name: "StackMapTable", Detail: "truncated offset_delta"}
		}
		stack, err := parseVerificationTypeInfo(c)
		if err != nil {
			return StackMapFrame{}, err
		}
		return StackMapFrame{
			Kind:        FrameSameLocals1StackItemExtended,
			Tag:         tag,
			OffsetDelta: offsetDelta,
			Stack:       []VerificationTypeInfo{stack},
		}, nil

	case tag <= 250:
		offsetDelta, ok := c.u2()
		if !ok {
			return StackMapFrame{}, &AttributeError{Name: "StackMapTable", Detail: "truncated offset_delta"}
		}
		return StackMapFrame{
			Kind:        FrameChop,
			Tag:         tag,
			OffsetDelta: offsetDelta,
			ChopCount:   251 - int(tag),
		}, nil

	case tag == 251:
		offsetDelta, ok := c.u2()
		if !ok {
			return StackMapFrame{}, &AttributeError{Name: "StackMapTable", Detail: "truncated offset_delta"}
		}
		return StackMapFrame{Kind: FrameSameFrameExtended, Tag: tag, OffsetDelta: offsetDelta}, nil

	case tag <= 254:
		offsetDelta, ok := c.u2()
		if !ok {
			return StackMapFrame{}, &AttributeError{Name: "StackMapTable", Detail: "truncated offset_delta"}
		}
		localCount := int(tag) - 251
		locals := make([]VerificationTypeInfo, localCount)
		for i := range locals {
			vti, err := parseVerificationTypeInfo(c)
			if err != nil {
				return StackMapFrame{}, err
			}
			locals[i] = vti
		}
		return StackMapFrame{Kind: FrameAppend, Tag: tag, OffsetDelta: offsetDelta, Locals: locals}, nil

	default: // 255: Full
		offsetDelta, ok := c.u2()
		if !ok {
			return StackMapFrame{}, &AttributeError{Name: "StackMapTable", Detail: "truncated offset_delta"}
		}
		numLocals, ok := c.u2()
		if !ok {
			return StackMapFrame{}, &AttributeError{Name: "StackMapTable", Detail: "truncated number_of_locals"}
		}
		locals := make([]VerificationTypeInfo, numLocals)
		for i := range locals {
			vti, err := parseVerificationTypeInfo(c)
			if err != nil {
				return StackMapFrame{}, err
			}
			locals[i] = vti
		}
		numStack, ok := c.u2()
		if !ok {
			return StackMapFrame{}, &AttributeError{Name: "StackMapTable", Detail: "truncated number_of_stack_items"}
		}
		stack := make([]VerificationTypeInfo, numStack)
		for i := range stack {
			vti, err := parseVerificationTypeInfo(c)
			if err != nil {
				return StackMapFrame{}, err
			}
			stack[i] = vti
		}
		return StackMapFrame{Kind: FrameFull, Tag: tag, OffsetDelta: offsetDelta, Locals: locals, Stack: stack}, nil
	}
}

func parseStackMapTableAttribute(info []byte) (interface{}, error) {
	c := &cur{buf: info}
	count, ok := c.u2()
	if !ok {
		return nil, &AttributeError{Name: "StackMapTable", Detail: "truncated number_of_entries"}
	}
	entries := make([]StackMapFrame, count)
	for i := range entries {
		frame, err := decodeStackMapFrame(c)
		if err != nil {
			return nil, err
		}
		entries[i] = frame
	}
	if c.remaining() != 0 {
		return nil, &TrailingAttributeBytesError{Name: "StackMapTable", Remaining: c.remaining()}
	}
	return &StackMapTableAttribute{Entries: entries}, nil
}

func parseLineNumberTableAttribute(info []byte) (interface{}, error) {
	c := &cur{buf: info}
	count, ok := c.u2()
	if !ok {
		return nil, &AttributeError{Name: "LineNumberTable", Detail: "truncated line_number_table_length"}
	}
	entries := make([]LineNumberEntry, count)
	for i := range entries {
		startPC, ok1 := c.u2()
		lineNumber, ok2 := c.u2()
		if !ok1 || !ok2 {
			return nil, &AttributeError{Name: "LineNumberTable", Detail: "truncated entry"}
		}
		entries[i] = LineNumberEntry{StartPC: startPC, LineNumber: lineNumber}
	}
	if c.remaining() != 0 {
		return nil, &TrailingAttributeBytesError{Name: "LineNumberTable", Remaining: c.remaining()}
	}
	return &LineNumberTableAttribute{LineNumberTable: entries}, nil
}

func parseLocalVariableTableAttribute(info []byte) (interface{}, error) {
	c := &cur{buf: info}
	count, ok := c.u2()
	if !ok {
		return nil, &AttributeError{Name: "LocalVariableTable", Detail: "truncated local_variable_table_length"}
	}
	entries := make([]LocalVariableEntry, count)
	for i := range entries {
		startPC, ok1 := c.u2()
		length, ok2 := c.u2()
		nameIndex, ok3 := c.u2()
		descriptorIndex, ok4 := c.u2()
		index, ok5 := c.u2()
		if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 {
			return nil, &AttributeError{Name: "LocalVariableTable", Detail: "truncated entry"}
		}
		entries[i] = LocalVariableEntry{
			StartPC: startPC, Length: length,
			NameIndex: nameIndex, DescriptorIndex: descriptorIndex, Index: index,
		}
	}
	if c.remaining() != 0 {
		return nil, &TrailingAttributeBytesError{Name: "LocalVariableTable", Remaining: c.remaining()}
	}
	return &LocalVariableTableAttribute{LocalVariableTable: entries}, nil
}

func parseLocalVariableTypeTableAttribute(info []byte) (interface{}, error) {
	c := &cur{buf: info}
	count, ok := c.u2()
	if !ok {
		return nil, &AttributeError{Name: "LocalVariableTypeTable", Detail: "truncated local_variable_type_table_length"}
	}
	entries := make([]LocalVariableTypeEntry, count)
	for i := range entries {
		startPC, ok1 := c.u2()
		length, ok2 := c.u2()
		nameIndex, ok3 := c.u2()
		signatureIndex, ok4 := c.u2()
		index, ok5 := c.u2()
		if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 {
			return nil, &AttributeError{Name: "LocalVariableTypeTable", Detail: "truncated entry"}
		}
		entries[i] = LocalVariableTypeEntry{
			StartPC: startPC, Length: length,
			NameIndex: nameIndex, SignatureIndex: signatureIndex, Index: index,
		}
	}
	if c.remaining() != 0 {
		return nil, &TrailingAttributeBytesError{Name: "LocalVariableTypeTable", Remaining: c.remaining()}
	}
	return &LocalVariableTypeTableAttribute{LocalVariableTypeTable: entries}, nil
}

func parseExceptionsAttribute(info []byte) (interface{}, error) {
	c := &cur{buf: info}
	count, ok := c.u2()
	if !ok {
		return nil, &AttributeError{Name: "Exceptions", Detail: "truncated number_of_exceptions"}
	}
	table := make([]uint16, count)
	for i := range table {
		idx, ok := c.u2()
		if !ok {
			return nil, &AttributeError{Name: "Exceptions", Detail: "truncated exception_index_table entry"}
		}
		table[i] = idx
	}
	if c.remaining() != 0 {
		return nil, &TrailingAttributeBytesError{Name: "Exceptions", Remaining: c.remaining()}
	}
	return &ExceptionsAttribute{ExceptionIndexTable: table}, nil
}

func parseInnerClassesAttribute(info []byte) (interface{}, error) {
	c := &cur{buf: info}
	count, ok := c.u2()
	if !ok {
		return nil, &AttributeError{Name: "InnerClasses", Detail: "truncated number_of_classes"}
	}
	classes := make([]InnerClassEntry, count)
	for i := range classes {
		innerInfo, ok1 := c.u2()
		outerInfo, ok2 := c.u2()
		innerName, ok3 := c.u2()
		flags, ok4 := c.u2()
		if !ok1 || !ok2 || !ok3 || !ok4 {
			return nil, &AttributeError{Name: "InnerClasses", Detail: "truncated classes entry"}
		}
		innerFlags := AccessFlags(flags)
		if err := innerFlags.validate(ScopeInnerClass); err != nil {
			return nil, err
		}
		classes[i] = InnerClassEntry{
			InnerClassInfoIndex:   innerInfo,
			OuterClassInfoIndex:   outerInfo,
			InnerNameIndex:        innerName,
			InnerClassAccessFlags: innerFlags,
		}
	}
	if c.remaining() != 0 {
		return nil, &TrailingAttributeBytesError{Name: "InnerClasses", Remaining: c.remaining()}
	}
	return &InnerClassesAttribute{Classes: classes}, nil
}

func parseEnclosingMethodAttribute(info []byte) (interface{}, error) {
	c := &cur{buf: info}
	classIndex, ok1 := c.u2()
	methodIndex, ok2 := c.u2()
	if !ok1 || !ok2 {
		return nil, &AttributeError{Name: "EnclosingMethod", Detail: "truncated body"}
	}
	if c.remaining() != 0 {
		return nil, &TrailingAttributeBytesError{Name: "EnclosingMethod", Remaining: c.remaining()}
	}
	return &EnclosingMethodAttribute{ClassIndex: classIndex, MethodIndex: methodIndex}, nil
}

func parseBootstrapMethodsAttribute(info []byte) (interface{}, error) {
	c := &cur{buf: info}
	count, ok := c.u2()
	if !ok {
		return nil, &AttributeError{Name: "BootstrapMethods", Detail: "truncated num_bootstrap_methods"}
	}
	methods := make([]BootstrapMethod, count)
	for i := range methods {
		methodRef, ok := c.u2()
		if !ok {
			return nil, &AttributeError{Name: "BootstrapMethods", Detail: "truncated bootstrap_method_ref"}
		}
		numArgs, ok := c.u2()
		if !ok {
			return nil, &AttributeError{Name: "BootstrapMethods", Detail: "truncated num_bootstrap_arguments"}
		}
		args := make([]uint16, numArgs)
		for j := range args {
			arg, ok := c.u2()
			if !ok {
				return nil, &AttributeError{Name: "BootstrapMethods", Detail: "truncated bootstrap_arguments entry"}
			}
			args[j] = arg
		}
		methods[i] = BootstrapMethod{BootstrapMethodRef: methodRef, BootstrapArguments: args}
	}
	if c.remaining() != 0 {
		return nil, &TrailingAttributeBytesError{Name: "BootstrapMethods", Remaining: c.remaining()}
	}
	return &BootstrapMethodsAttribute{BootstrapMethods: methods}, nil
}

func parseElementValue(name string, c *cur) (ElementValue, error) {
	tag, ok := c.u1()
	if !ok {
		return ElementValue{}, &AttributeError{Name: name, Detail: "truncated element_value tag"}
	}
	switch tag {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z', 's':
		idx, ok := c.u2()
		if !ok {
			return ElementValue{}, &AttributeError{Name: name, Detail: "truncated const_value_index"}
		}
		return ElementValue{Tag: tag, ConstValueIndex: idx}, nil
	case 'e':
		typeName, ok1 := c.u2()
		constName, ok2 := c.u2()
		if !ok1 || !ok2 {
			return ElementValue{}, &AttributeError{Name: name, Detail: "truncated enum_const_value"}
		}
		return ElementValue{Tag: tag, TypeNameIndex: typeName, ConstNameIndex: constName}, nil
	case 'c':
		idx, ok := c.u2()
		if !ok {
			return ElementValue{}, &AttributeError{Name: name, Detail: "truncated class_info_index"}
		}
		return ElementValue{Tag: tag, ClassInfoIndex: idx}, nil
	case '@':
		ann, err := parseAnnotation(name, c)
		if err != nil {
			return ElementValue{}, err
		}
		return ElementValue{Tag: tag, NestedAnnotation: &ann}, nil
	case '[':
		count, ok := c.u2()
		if !ok {
			return ElementValue{}, &AttributeError{Name: name, Detail: "truncated num_values"}
		}
		values := make([]ElementValue, count)
		for i := range values {
			v, err := parseElementValue(name, c)
			if err != nil {
				return ElementValue{}, err
			}
			values[i] = v
		}
		return ElementValue{Tag: tag, ArrayValues: values}, nil
	default:
		return ElementValue{}, &ElementValueTagError{Tag: tag}
	}
}

func parseAnnotation(name string, c *cur) (Annotation, error) {
	typeIndex, ok := c.u2()
	if !ok {
		return Annotation{}, &AttributeError{Name: name, Detail: "truncated type_index"}
	}
	numPairs, ok := c.u2()
	if !ok {
		return Annotation{}, &AttributeError{Name: name, Detail: "truncated num_element_value_pairs"}
	}
	pairs := make([]ElementValuePair, numPairs)
	for i := range pairs {
		nameIndex, ok := c.u2()
		if !ok {
			return Annotation{}, &AttributeError{Name: name, Detail: "truncated element_name_index"}
		}
		value, err := parseElementValue(name, c)
		if err != nil {
			return Annotation{}, err
		}
		pairs[i] = ElementValuePair{NameIndex: nameIndex, Value: value}
	}
	return Annotation{TypeIndex: typeIndex, Pairs: pairs}, nil
}

func parseAnnotationsAttribute(name string, info []byte) (interface{}, error) {
	c := &cur{buf: info}
	count, ok := c.u2()
	if !ok {
		return nil, &AttributeError{Name: name, Detail: "truncated num_annotations"}
	}
	anns := make([]Annotation, count)
	for i := range anns {
		ann, err := parseAnnotation(name, c)
		if err != nil {
			return nil, err
		}
		anns[i] = ann
	}
	if c.remaining() != 0 {
		return nil, &TrailingAttributeBytesError{Name: name, Remaining: c.remaining()}
	}
	return &AnnotationAttribute{Annotations: anns}, nil
}

// parseParameterAnnotationsAttribute decodes RuntimeVisible/InvisibleParameterAnnotations,
// whose outer count is a single byte, unlike every other Counted<T> in this grammar.
func parseParameterAnnotationsAttribute(name string, info []byte) (interface{}, error) {
	c := &cur{buf: info}
	numParameters, ok := c.u1()
	if !ok {
		return nil, &AttributeError{Name: name, Detail: "truncated num_parameters"}
	}
	params := make([][]Annotation, numParameters)
	for p := range params {
		count, ok := c.u2()
		if !ok {
			return nil, &AttributeError{Name: name, Detail: "truncated num_annotations"}
		}
		anns := make([]Annotation, count)
		for i := range anns {
			ann, err := parseAnnotation(name, c)
			if err != nil {
				return nil, err
			}
			anns[i] = ann
		}
		params[p] = anns
	}
	if c.remaining() != 0 {
		return nil, &TrailingAttributeBytesError{Name: name, Remaining: c.remaining()}
	}
	return &ParameterAnnotationsAttribute{Parameters: params}, nil
}

func parseAnnotationDefaultAttribute(name string, info []byte) (interface{}, error) {
	c := &cur{buf: info}
	value, err := parseElementValue(name, c)
	if err != nil {
		return nil, err
	}
	if c.remaining() != 0 {
		return nil, &TrailingAttributeBytesError{Name: name, Remaining: c.remaining()}
	}
	return &AnnotationDefaultAttribute{Value: value}, nil
}

// Accessors below give callers type-switch-free access to the common
// attribute kinds: Code/LineNumberTable/SourceFile/ConstantValue/Exceptions/
// InnerClasses/Signature/BootstrapMethods.

func (a *AttributeInfo) AsCode() *CodeAttribute {
	v, _ := a.Parsed.(*CodeAttribute)
	return v
}

func (a *AttributeInfo) AsStackMapTable() *StackMapTableAttribute {
	v, _ := a.Parsed.(*StackMapTableAttribute)
	return v
}

func (a *AttributeInfo) AsLineNumberTable() *LineNumberTableAttribute {
	v, _ := a.Parsed.(*LineNumberTableAttribute)
	return v
}

func (a *AttributeInfo) AsLocalVariableTable() *LocalVariableTableAttribute {
	v, _ := a.Parsed.(*LocalVariableTableAttribute)
	return v
}

func (a *AttributeInfo) AsLocalVariableTypeTable() *LocalVariableTypeTableAttribute {
	v, _ := a.Parsed.(*LocalVariableTypeTableAttribute)
	return v
}

func (a *AttributeInfo) AsSourceFile() *SourceFileAttribute {
	v, _ := a.Parsed.(*SourceFileAttribute)
	return v
}

func (a *AttributeInfo) AsConstantValue() *ConstantValueAttribute {
	v, _ := a.Parsed.(*ConstantValueAttribute)
	return v
}

func (a *AttributeInfo) AsExceptions() *ExceptionsAttribute {
	v, _ := a.Parsed.(*ExceptionsAttribute)
	return v
}

func (a *AttributeInfo) AsInnerClasses() *InnerClassesAttribute {
	v, _ := a.Parsed.(*InnerClassesAttribute)
	return v
}

func (a *AttributeInfo) AsSignature() *SignatureAttribute {
	v, _ := a.Parsed.(*SignatureAttribute)
	return v
}

func (a *AttributeInfo) AsBootstrapMethods() *BootstrapMethodsAttribute {
	v, _ := a.Parsed.(*BootstrapMethodsAttribute)
	return v
}

func (a *AttributeInfo) AsAnnotations() *AnnotationAttribute {
	v, _ := a.Parsed.(*AnnotationAttribute)
	return v
}

func (a *AttributeInfo) AsMisc() *MiscAttribute {
	v, _ := a.Parsed.(*MiscAttribute)
	return v
}
