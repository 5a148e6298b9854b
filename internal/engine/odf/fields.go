package odf

import (
	"errors"
	"fmt"

	"github.com/beevik/etree"
)

const (
	UserMasterPrefix          = "com.sun.star.text.FieldMaster.User."
	SetExpressionMasterPrefix = "com.sun.star.text.FieldMaster.SetExpression."
)

var errDetached = errors.New("field instance is no longer in the document")

// variableInstanceTags are fields that render a user or variable master.
var variableInstanceTags = map[string]bool{
	"user-field-get":   true,
	"user-field-input": true,
	"variable-get":     true,
	"variable-set":     true,
	"variable-input":   true,
}

// otherFieldTags render values that placeholder search must not see.
var otherFieldTags = map[string]bool{
	"date": true, "time": true, "page-number": true, "page-count": true,
	"page-continuation": true, "sequence": true, "sequence-ref": true,
	"expression": true, "text-input": true, "placeholder": true,
	"chapter": true, "file-name": true, "template-name": true,
	"author-name": true, "author-initials": true, "title": true,
	"subject": true, "description": true, "keywords": true,
	"bookmark-ref": true, "reference-ref": true, "note-ref": true,
	"word-count": true, "character-count": true, "paragraph-count": true,
	"conditional-text": true, "hidden-text": true, "database-display": true,
}

func isVariableInstance(e *etree.Element) bool {
	return e.Space == "text" && variableInstanceTags[e.Tag]
}

func isFieldElement(e *etree.Element) bool {
	return e.Space == "text" && (variableInstanceTags[e.Tag] || otherFieldTags[e.Tag])
}

func isUserTag(tag string) bool {
	return tag == "user-field-get" || tag == "user-field-input" || tag == "user-field-decl"
}

func qualifiedName(e *etree.Element) string {
	name := e.SelectAttrValue("text:name", "")
	if isUserTag(e.Tag) {
		return UserMasterPrefix + name
	}
	return SetExpressionMasterPrefix + name
}

// typedValue reads the value an element carries in its office:* attributes.
func typedValue(e *etree.Element) (string, bool) {
	keys := map[string]string{
		"string":     "office:string-value",
		"float":      "office:value",
		"percentage": "office:value",
		"currency":   "office:value",
		"date":       "office:date-value",
		"time":       "office:time-value",
		"boolean":    "office:boolean-value",
	}
	key, ok := keys[e.SelectAttrValue("office:value-type", "string")]
	if !ok {
		key = "office:string-value"
	}
	if a := e.SelectAttr(key); a != nil {
		return a.Value, true
	}
	return "", false
}

func setStringValue(e *etree.Element, value string) {
	for _, a := range []string{"office:value", "office:date-value", "office:time-value", "office:boolean-value", "office:currency"} {
		e.RemoveAttr(a)
	}
	e.CreateAttr("office:value-type", "string")
	e.CreateAttr("office:string-value", value)
}

type fieldMaster struct {
	doc *Document
	el  *etree.Element
}

func (m *fieldMaster) QualifiedName() string { return qualifiedName(m.el) }
func (m *fieldMaster) Name() string          { return m.el.SelectAttrValue("text:name", "") }

func (m *fieldMaster) isUser() bool { return is(m.el, "text", "user-field-decl") }

func (m *fieldMaster) Content() string {
	if m.isUser() {
		v, _ := typedValue(m.el)
		return v
	}
	var last string
	for _, set := range m.doc.variableSets(m.Name()) {
		last, _ = typedValue(set)
		if last == "" {
			last = visibleText(set)
		}
	}
	return last
}

// SetContent stores value on the declaration. For variables, every setter
// of the variable is rewritten as well since their values live there.
func (m *fieldMaster) SetContent(value string) error {
	if m.el.Parent() == nil {
		return fmt.Errorf("field master %s was removed", m.Name())
	}
	if m.isUser() {
		setStringValue(m.el, value)
		return nil
	}
	m.el.CreateAttr("office:value-type", "string")
	for _, set := range m.doc.variableSets(m.Name()) {
		setStringValue(set, value)
		set.SetText(value)
	}
	return nil
}

type fieldInstance struct {
	el *etree.Element
}

func (f *fieldInstance) MasterName() string { return qualifiedName(f.el) }
func (f *fieldInstance) Text() string       { return visibleText(f.el) }

func (f *fieldInstance) Flatten(value string) error {
	if f.el.Parent() == nil {
		return errDetached
	}
	replaceWithText(f.el, value)
	return nil
}

// refreshFields rewrites instance text from master values in document order.
// In strict mode instances whose master cannot be found are reported.
func (d *Document) refreshFields(strict bool) error {
	userValues := make(map[string]string)
	declared := make(map[string]bool)
	walk(d.root, func(e *etree.Element) bool {
		switch {
		case is(e, "text", "user-field-decl"):
			v, _ := typedValue(e)
			userValues[e.SelectAttrValue("text:name", "")] = v
		case is(e, "text", "variable-decl"):
			declared[e.SelectAttrValue("text:name", "")] = true
		}
		return true
	})

	current := make(map[string]string)
	var dangling []string
	walk(d.body, func(e *etree.Element) bool {
		if !isVariableInstance(e) {
			return true
		}
		name := e.SelectAttrValue("text:name", "")
		switch e.Tag {
		case "user-field-get", "user-field-input":
			v, ok := userValues[name]
			if !ok {
				dangling = append(dangling, UserMasterPrefix+name)
				return false
			}
			e.SetText(v)
		case "variable-set":
			v, ok := typedValue(e)
			if !ok {
				v = visibleText(e)
			}
			current[name] = v
		case "variable-get", "variable-input":
			if v, ok := current[name]; ok {
				e.SetText(v)
			} else if !declared[name] {
				dangling = append(dangling, SetExpressionMasterPrefix+name)
			}
		}
		return false
	})

	if strict && len(dangling) > 0 {
		return fmt.Errorf("fields without master: %v", dangling)
	}
	return nil
}

// variableSets returns every setter of the named variable in document order.
func (d *Document) variableSets(name string) []*etree.Element {
	var out []*etree.Element
	walk(d.body, func(e *etree.Element) bool {
		if is(e, "text", "variable-set") && e.SelectAttrValue("text:name", "") == name {
			out = append(out, e)
		}
		return true
	})
	return out
}
