// Package dump renders a decoded class file as JSON, resolving constant
// pool indices into the strings and structures they name along the way.
package dump

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/classdump/classfile"
)

type Encoder struct {
	w     io.Writer
	class *classfile.ClassFile
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

func (e *Encoder) Encode(cf *classfile.ClassFile) error {
	e.class = cf
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *Encoder) MarshalText() ([]byte, error) {
	data := e.buildClassData()
	return json.MarshalIndent(data, "", "  ")
}

type jsonClass struct {
	Name       string          `json:"name"`
	SuperClass string          `json:"superClass,omitempty"`
	Interfaces []string        `json:"interfaces,omitempty"`
	Kind       string          `json:"kind"`
	Modifiers  []string        `json:"modifiers,omitempty"`
	Version    jsonVersion     `json:"version"`
	Fields     []jsonField     `json:"fields,omitempty"`
	Methods    []jsonMethod    `json:"methods,omitempty"`
	Attributes []jsonAttribute `json:"attributes,omitempty"`
}

type jsonVersion struct {
	Major uint16 `json:"major"`
	Minor uint16 `json:"minor"`
}

type jsonField struct {
	Name       string   `json:"name"`
	Descriptor string   `json:"descriptor"`
	Type       string   `json:"type,omitempty"`
	Modifiers  []string `json:"modifiers,omitempty"`
}

type jsonMethod struct {
	Name       string   `json:"name"`
	Descriptor string   `json:"descriptor"`
	Parameters []string `json:"parameters,omitempty"`
	ReturnType string   `json:"returnType,omitempty"`
	Modifiers  []string `json:"modifiers,omitempty"`
	CodeLength int      `json:"codeLength,omitempty"`
	MaxStack   uint16   `json:"maxStack,omitempty"`
	MaxLocals  uint16   `json:"maxLocals,omitempty"`
}

type jsonAttribute struct {
	Name string `json:"name"`
}

func (e *Encoder) buildClassData() jsonClass {
	cf := e.class
	cp := cf.ConstantPool
	data := jsonClass{
		Name:       cf.ClassName(),
		SuperClass: cf.SuperClassName(),
		Interfaces: cf.InterfaceNames(),
		Kind:       e.classKind(),
		Modifiers:  e.classModifiers(),
		Version: jsonVersion{
			Major: cf.MajorVersion,
			Minor: cf.MinorVersion,
		},
		Fields:     e.buildFields(),
		Methods:    e.buildMethods(),
		Attributes: e.buildAttributes(cf.Attributes, cp),
	}
	return data
}

func (e *Encoder) classKind() string {
	cf := e.class
	switch {
	case cf.IsAnnotation():
		return "annotation"
	case cf.IsEnum():
		return "enum"
	case cf.IsInterface():
		return "interface"
	case cf.IsModule():
		return "module"
	case cf.IsClass():
		return "class"
	default:
		return "class"
	}
}

func (e *Encoder) classModifiers() []string {
	f := e.class.AccessFlags
	var mods []string
	if f.IsPublic() {
		mods = append(mods, "public")
	}
	if f.IsFinal() {
		mods = append(mods, "final")
	}
	if f.IsAbstract() {
		mods = append(mods, "abstract")
	}
	if f.IsSynthetic() {
		mods = append(mods, "synthetic")
	}
	return mods
}

func (e *Encoder) buildFields() []jsonField {
	cp := e.class.ConstantPool
	fields := e.class.Fields
	result := make([]jsonField, len(fields))
	for i := range fields {
		f := &fields[i]
		jf := jsonField{
			Name:       f.Name(cp),
			Descriptor: f.Descriptor(cp),
			Modifiers:  fieldModifiers(f),
		}
		if ft := f.ParsedDescriptor(cp); ft != nil {
			jf.Type = ft.String()
		}
		result[i] = jf
	}
	return result
}

func fieldModifiers(f *classfile.FieldInfo) []string {
	var mods []string
	if f.IsPublic() {
		mods = append(mods, "public")
	}
	if f.IsPrivate() {
		mods = append(mods, "private")
	}
	if f.IsProtected() {
		mods = append(mods, "protected")
	}
	if f.IsStatic() {
		mods = append(mods, "static")
	}
	if f.IsFinal() {
		mods = append(mods, "final")
	}
	if f.IsVolatile() {
		mods = append(mods, "volatile")
	}
	if f.IsTransient() {
		mods = append(mods, "transient")
	}
	if f.IsSynthetic() {
		mods = append(mods, "synthetic")
	}
	if f.IsEnum() {
		mods = append(mods, "enum")
	}
	return mods
}

func (e *Encoder) buildMethods() []jsonMethod {
	cp := e.class.ConstantPool
	methods := e.class.Methods
	result := make([]jsonMethod, len(methods))
	for i := range methods {
		m := &methods[i]
		jm := jsonMethod{
			Name:       m.Name(cp),
			Descriptor: m.Descriptor(cp),
			Modifiers:  methodModifiers(m),
		}
		if md := m.ParsedDescriptor(cp); md != nil {
			for _, p := range md.Parameters {
				jm.Parameters = append(jm.Parameters, p.String())
			}
			if md.ReturnType != nil {
				jm.ReturnType = md.ReturnType.String()
			}
		}
		if code := m.GetCodeAttribute(cp); code != nil {
			jm.CodeLength = len(code.Code)
			jm.MaxStack = code.MaxStack
			jm.MaxLocals = code.MaxLocals
		}
		result[i] = jm
	}
	return result
}

func methodModifiers(m *classfile.MethodInfo) []string {
	var mods []string
	if m.IsPublic() {
		mods = append(mods, "public")
	}
	if m.IsStatic() {
		mods = append(mods, "static")
	}
	if m.IsFinal() {
		mods = append(mods, "final")
	}
	if m.IsAbstract() {
		mods = append(mods, "abstract")
	}
	if m.IsSynchronized() {
		mods = append(mods, "synchronized")
	}
	if m.IsNative() {
		mods = append(mods, "native")
	}
	if m.IsBridge() {
		mods = append(mods, "bridge")
	}
	if m.IsVarargs() {
		mods = append(mods, "varargs")
	}
	if m.IsSynthetic() {
		mods = append(mods, "synthetic")
	}
	return mods
}

func (e *Encoder) buildAttributes(attrs []classfile.AttributeInfo, cp classfile.ConstantPool) []jsonAttribute {
	result := make([]jsonAttribute, len(attrs))
	for i, a := range attrs {
		result[i] = jsonAttribute{Name: a.Name(cp)}
	}
	return result
}
