package classfile

import (
	"fmt"
	"io"
	"os"
)

// ParseFile opens path, stats it for a known length, and parses it as a
// class file.
func ParseFile(path string) (*ClassFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open class file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat class file: %w", err)
	}

	return Parse(NewSource(f, info.Size()), ParseOptions{})
}

// ParseReader parses rd as a class file without a known length; the
// end-of-stream check is skipped unless opts.Strict is set.
func ParseReader(rd io.Reader, opts ParseOptions) (*ClassFile, error) {
	return Parse(NewUnsizedSource(rd), opts)
}

// Parse reads src top to bottom per the class file grammar: magic, version,
// constant pool, access flags, this/super, interfaces, fields, methods,
// class attributes, then an optional trailing-bytes check. Failure at any
// step aborts with that step's error.
func Parse(src Source, opts ParseOptions) (*ClassFile, error) {
	r := &reader{r: src}

	magic := r.readU4()
	if r.err != nil {
		return nil, fmt.Errorf("failed to read magic: %w", r.err)
	}
	if magic != Magic {
		return nil, &BadMagicError{Got: magic}
	}

	cf := &ClassFile{
		MinorVersion: r.readU2(),
		MajorVersion: r.readU2(),
	}
	if r.err != nil {
		return nil, fmt.Errorf("failed to read version: %w", r.err)
	}

	pool, err := decodeConstantPool(r)
	if err != nil {
		return nil, err
	}
	cf.ConstantPool = pool

	accessFlags := AccessFlags(r.readU2())
	if r.err != nil {
		return nil, fmt.Errorf("failed to read access flags: %w", r.err)
	}
	if err := accessFlags.validate(ScopeClass); err != nil {
		return nil, err
	}
	cf.AccessFlags = accessFlags

	cf.ThisClass = r.readU2()
	cf.SuperClass = r.readU2()
	if r.err != nil {
		return nil, fmt.Errorf("failed to read this/super class: %w", r.err)
	}

	interfacesCount := r.readU2()
	if r.err != nil {
		return nil, fmt.Errorf("failed to read interfaces_count: %w", r.err)
	}
	cf.Interfaces = make([]uint16, interfacesCount)
	for i := range cf.Interfaces {
		cf.Interfaces[i] = r.readU2()
	}
	if r.err != nil {
		return nil, fmt.Errorf("failed to read interfaces: %w", r.err)
	}

	fieldsCount := r.readU2()
	if r.err != nil {
		return nil, fmt.Errorf("failed to read fields_count: %w", r.err)
	}
	cf.Fields = make([]FieldInfo, fieldsCount)
	for i := range cf.Fields {
		field, err := readFieldInfo(r, pool)
		if err != nil {
			return nil, fmt.Errorf("failed to read field %d: %w", i, err)
		}
		cf.Fields[i] = *field
	}

	methodsCount := r.readU2()
	if r.err != nil {
		return nil, fmt.Errorf("failed to read methods_count: %w", r.err)
	}
	cf.Methods = make([]MethodInfo, methodsCount)
	for i := range cf.Methods {
		method, err := readMethodInfo(r, pool)
		if err != nil {
			return nil, fmt.Errorf("failed to read method %d: %w", i, err)
		}
		cf.Methods[i] = *method
	}

	attributesCount := r.readU2()
	if r.err != nil {
		return nil, fmt.Errorf("failed to read attributes_count: %w", r.err)
	}
	cf.Attributes = make([]AttributeInfo, attributesCount)
	for i := range cf.Attributes {
		attr, err := readTopLevelAttribute(r, pool)
		if err != nil {
			return nil, fmt.Errorf("failed to read class attribute %d: %w", i, err)
		}
		cf.Attributes[i] = *attr
	}

	if opts.Strict {
		if err := validatePoolIndices(cf); err != nil {
			return nil, err
		}
	}

	// Trailing-bytes check: only meaningful when the source has a known
	// length (the preferred case per spec), or when the caller forces it
	// with Strict even over a streaming source.
	if _, known := src.Len(); (known || opts.Strict) && r.err == nil {
		if n, _ := io.Copy(io.Discard, r.r); n > 0 {
			return nil, &TrailingBytesError{Count: n}
		}
	}

	return cf, nil
}

func readFieldInfo(r *reader, cp ConstantPool) (*FieldInfo, error) {
	field := &FieldInfo{
		AccessFlags:     AccessFlags(r.readU2()),
		NameIndex:       r.readU2(),
		DescriptorIndex: r.readU2(),
	}
	if r.err != nil {
		return nil, r.err
	}
	if err := field.AccessFlags.validate(ScopeField); err != nil {
		return nil, err
	}

	attributesCount := r.readU2()
	if r.err != nil {
		return nil, r.err
	}
	field.Attributes = make([]AttributeInfo, attributesCount)
	for i := range field.Attributes {
		attr, err := readTopLevelAttribute(r, cp)
		if err != nil {
			return nil, err
		}
		field.Attributes[i] = *attr
	}

	return field, nil
}

func readMethodInfo(r *reader, cp ConstantPool) (*MethodInfo, error) {
	method := &MethodInfo{
		AccessFlags:     AccessFlags(r.readU2()),
		NameIndex:       r.readU2(),
		DescriptorIndex: r.readU2(),
	}
	if r.err != nil {
		return nil, r.err
	}
	if err := method.AccessFlags.validate(ScopeMethod); err != nil {
		return nil, err
	}

	attributesCount := r.readU2()
	if r.err != nil {
		return nil, r.err
	}
	method.Attributes = make([]AttributeInfo, attributesCount)
	for i := range method.Attributes {
		attr, err := readTopLevelAttribute(r, cp)
		if err != nil {
			return nil, err
		}
		method.Attributes[i] = *attr
	}

	return method, nil
}

func readTopLevelAttribute(r *reader, cp ConstantPool) (*AttributeInfo, error) {
	nameIndex := r.readU2()
	length := r.readU4()
	body := r.readBytes(int(length))
	if r.err != nil {
		return nil, r.err
	}

	attr, err := decodeAttribute(nameIndex, body, cp)
	if err != nil {
		return nil, err
	}
	return &attr, nil
}

func decodeConstantPool(r *reader) (ConstantPool, error) {
	count := r.readU2()
	if r.err != nil {
		return nil, fmt.Errorf("failed to read constant_pool_count: %w", r.err)
	}

	var pool ConstantPool
	if count > 0 {
		pool = make(ConstantPool, count-1)
	}

	for i := uint16(1); i < count; i++ {
		entry, wide, err := decodeConstantPoolEntry(r, i)
		if err != nil {
			return nil, err
		}
		pool[i-1] = entry
		if wide {
			i++
			if i < count {
				pool[i-1] = nil
			}
		}
	}

	return pool, nil
}

// validatePoolIndices is the strict-mode pass over every index the decoder
// itself stores but doesn't otherwise dereference (this_class, super_class,
// interfaces, and field/method name and descriptor indices). It is the
// "validate at decode" side of the permissive/strict choice; the permissive
// side is simply not calling this.
func validatePoolIndices(cf *ClassFile) error {
	cp := cf.ConstantPool
	check := func(idx uint16) error {
		if idx == 0 {
			return nil // 0 means "absent", e.g. super_class for java.lang.Object
		}
		_, err := cp.At(idx)
		return err
	}
	if err := check(cf.ThisClass); err != nil {
		return fmt.Errorf("this_class: %w", err)
	}
	if err := check(cf.SuperClass); err != nil {
		return fmt.Errorf("super_class: %w", err)
	}
	for _, idx := range cf.Interfaces {
		if err := check(idx); err != nil {
			return fmt.Errorf("interfaces: %w", err)
		}
	}
	for _, f := range cf.Fields {
		if err := check(f.NameIndex); err != nil {
			return fmt.Errorf("field name_index: %w", err)
		}
		if err := check(f.DescriptorIndex); err != nil {
			return fmt.Errorf("field descriptor_index: %w", err)
		}
	}
	for _, m := range cf.Methods {
		if err := check(m.NameIndex); err != nil {
			return fmt.Errorf("method name_index: %w", err)
		}
		if err := check(m.DescriptorIndex); err != nil {
			return fmt.Errorf("method descriptor_index: %w", err)
		}
	}
	return nil
}
