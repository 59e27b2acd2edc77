package dump

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"testing"

	"github.com/dhamidi/classdump/classfile"
)

// builder assembles a class file byte stream by hand, the same way the
// decoder's own tests do, so the fixture used here is traceable byte by
// byte instead of opaque binary test data.
type builder struct {
	buf bytes.Buffer
}

func (b *builder) u1(v uint8) *builder {
	b.buf.WriteByte(v)
	return b
}

func (b *builder) u2(v uint16) *builder {
	binary.Write(&b.buf, binary.BigEndian, v)
	return b
}

func (b *builder) u4(v uint32) *builder {
	binary.Write(&b.buf, binary.BigEndian, v)
	return b
}

func (b *builder) raw(data []byte) *builder {
	b.buf.Write(data)
	return b
}

func (b *builder) utf8Entry(s string) *builder {
	b.u1(1) // ConstantUtf8 tag
	b.u2(uint16(len(s)))
	b.raw([]byte(s))
	return b
}

func (b *builder) classEntry(nameIndex uint16) *builder {
	b.u1(7) // ConstantClass tag
	b.u2(nameIndex)
	return b
}

func (b *builder) bytesValue() []byte { return b.buf.Bytes() }

// sampleClassBytes builds a public class "example/Sample" extending
// java/lang/Object, with one private int field and one public no-arg
// method carrying a one-instruction Code attribute.
func sampleClassBytes() []byte {
	b := &builder{}
	b.u4(classfile.Magic)
	b.u2(0)  // minor
	b.u2(52) // major

	b.u2(10) // constant_pool_count
	b.utf8Entry("example/Sample")  // #1
	b.classEntry(1)                // #2 Class -> Sample
	b.utf8Entry("java/lang/Object") // #3
	b.classEntry(3)                 // #4 Class -> Object
	b.utf8Entry("value")            // #5
	b.utf8Entry("I")                // #6
	b.utf8Entry("run")              // #7
	b.utf8Entry("()V")              // #8
	b.utf8Entry("Code")             // #9

	b.u2(uint16(classfile.AccPublic | classfile.AccSuper)) // access_flags
	b.u2(2)                                                // this_class
	b.u2(4)                                                // super_class
	b.u2(0)                                                // interfaces_count

	b.u2(1)                                     // fields_count
	b.u2(uint16(classfile.AccPrivate))          // field access_flags
	b.u2(5)                                     // name_index "value"
	b.u2(6)                                     // descriptor_index "I"
	b.u2(0)                                     // field attributes_count

	code := &builder{}
	code.u2(1)             // max_stack
	code.u2(1)             // max_locals
	code.u4(1)             // code_length
	code.raw([]byte{0xB1}) // return
	code.u2(0)             // exception_table_length
	code.u2(0)             // attributes_count

	b.u2(1)                              // methods_count
	b.u2(uint16(classfile.AccPublic))    // method access_flags
	b.u2(7)                              // name_index "run"
	b.u2(8)                              // descriptor_index "()V"
	b.u2(1)                              // method attributes_count
	b.u2(9)                              // attribute name_index "Code"
	b.u4(uint32(len(code.bytesValue()))) // attribute_length
	b.raw(code.bytesValue())

	b.u2(0) // class attributes_count
	return b.bytesValue()
}

func parseSample(t *testing.T) *classfile.ClassFile {
	t.Helper()
	cf, err := classfile.ParseReader(bytes.NewReader(sampleClassBytes()), classfile.ParseOptions{})
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return cf
}

func TestEncodeProducesExpectedShape(t *testing.T) {
	cf := parseSample(t)

	var out bytes.Buffer
	if err := NewEncoder(&out).Encode(cf); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var decoded jsonClass
	if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if decoded.Name != "example/Sample" {
		t.Fatalf("Name = %q, want example/Sample", decoded.Name)
	}
	if decoded.SuperClass != "java/lang/Object" {
		t.Fatalf("SuperClass = %q, want java/lang/Object", decoded.SuperClass)
	}
	if decoded.Kind != "class" {
		t.Fatalf("Kind = %q, want class", decoded.Kind)
	}
	if decoded.Version.Major != 52 {
		t.Fatalf("Version.Major = %d, want 52", decoded.Version.Major)
	}
	if len(decoded.Fields) != 1 || decoded.Fields[0].Name != "value" || decoded.Fields[0].Descriptor != "I" {
		t.Fatalf("Fields = %+v", decoded.Fields)
	}
	if len(decoded.Fields[0].Modifiers) != 1 || decoded.Fields[0].Modifiers[0] != "private" {
		t.Fatalf("field Modifiers = %v, want [private]", decoded.Fields[0].Modifiers)
	}
	if decoded.Fields[0].Type != "int" {
		t.Fatalf("field Type = %q, want int", decoded.Fields[0].Type)
	}
	if len(decoded.Methods) != 1 || decoded.Methods[0].Name != "run" || decoded.Methods[0].Descriptor != "()V" {
		t.Fatalf("Methods = %+v", decoded.Methods)
	}
	m := decoded.Methods[0]
	if m.CodeLength != 1 || m.MaxStack != 1 || m.MaxLocals != 1 {
		t.Fatalf("method code metadata = %+v, want length/maxStack/maxLocals = 1/1/1", m)
	}
	if len(m.Parameters) != 0 || m.ReturnType != "" {
		t.Fatalf("method signature = %+v, want no parameters and empty (void) return type", m)
	}
}

func TestEncodeResolvesParameterAndReturnTypes(t *testing.T) {
	b := &builder{}
	b.u4(classfile.Magic)
	b.u2(0)
	b.u2(52)

	b.u2(7) // constant_pool_count
	b.utf8Entry("example/Sample")    // #1
	b.classEntry(1)                  // #2
	b.utf8Entry("convert")           // #3
	b.utf8Entry("(I[Ljava/lang/String;)Ljava/lang/String;") // #4
	b.u1(1).u2(0) // #5 placeholder, unused
	b.u1(1).u2(0) // #6 placeholder, unused

	b.u2(uint16(classfile.AccPublic | classfile.AccSuper))
	b.u2(2) // this_class
	b.u2(0) // super_class (none)
	b.u2(0) // interfaces_count

	b.u2(0) // fields_count

	b.u2(1)                           // methods_count
	b.u2(uint16(classfile.AccPublic)) // method access_flags
	b.u2(3)                           // name_index "convert"
	b.u2(4)                           // descriptor_index
	b.u2(0)                           // method attributes_count

	b.u2(0) // class attributes_count

	cf, err := classfile.ParseReader(bytes.NewReader(b.bytesValue()), classfile.ParseOptions{})
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}

	var out bytes.Buffer
	if err := NewEncoder(&out).Encode(cf); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var decoded jsonClass
	if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if len(decoded.Methods) != 1 {
		t.Fatalf("Methods = %+v, want 1", decoded.Methods)
	}
	m := decoded.Methods[0]
	wantParams := []string{"int", "[]java.lang.String"}
	if len(m.Parameters) != len(wantParams) || m.Parameters[0] != wantParams[0] || m.Parameters[1] != wantParams[1] {
		t.Fatalf("Parameters = %v, want %v", m.Parameters, wantParams)
	}
	if m.ReturnType != "java.lang.String" {
		t.Fatalf("ReturnType = %q, want java.lang.String", m.ReturnType)
	}
}

func TestMarshalTextRoundTripsThroughEncode(t *testing.T) {
	cf := parseSample(t)

	enc := NewEncoder(nil)
	enc.class = cf
	text, err := enc.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}

	var out bytes.Buffer
	if err := NewEncoder(&out).Encode(cf); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	if !bytes.Equal(text, out.Bytes()) {
		t.Fatalf("MarshalText output does not match Encode output")
	}
}
