package vdom

import (
	"sort"
	"strings"
)

// attr creates a single-valued Attribute with the given name and value.
func attr(name string, value any) Attribute {
	return Attribute{Name: name, Values: []AttrValue{Simple(ValueOf(value))}}
}

// Attr creates an attribute with one simple value.
func Attr(name string, value any) Attribute { return attr(name, value) }

// AttrNS creates a namespaced attribute, e.g. xlink:href on SVG.
func AttrNS(namespace, name string, value any) Attribute {
	a := attr(name, value)
	a.Namespace = namespace
	return a
}

// Diffing attributes

// Key sets the reconciliation identity of a child.
func Key(key any) Attribute { return attr(NameKey, key) }

// Skip opts the element and its subtree out of diffing.
func Skip() Attribute { return attr(NameSkip, true) }

// SkipCriteria skips the subtree when the previous render carried an equal
// criteria value.
func SkipCriteria(criteria any) Attribute { return attr(NameSkipCriteria, criteria) }

// Replace forces a full ReplaceNode instead of an in-place update.
func Replace() Attribute { return attr(NameReplace, true) }

// Stateful attributes

// ValueAttr sets the value attribute (named to avoid conflict with Value).
func ValueAttr(value any) Attribute { return attr(NameValue, value) }

// Checked sets the checked attribute.
func Checked(checked bool) Attribute { return attr(NameChecked, checked) }

// Disabled sets the disabled attribute.
func Disabled(disabled bool) Attribute { return attr(NameDisabled, disabled) }

// Open sets the open attribute (for details, dialog).
func Open(open bool) Attribute { return attr(NameOpen, open) }

// Identity attributes

// ID sets the id attribute.
func ID(id string) Attribute { return attr("id", id) }

// Class sets the class attribute, joining multiple classes with spaces.
// Several Class attributes on one element are merged.
func Class(classes ...string) Attribute { return attr("class", strings.Join(classes, " ")) }

// ClassIf adds a class conditionally.
func ClassIf(condition bool, class string) Attribute {
	if condition {
		return attr("class", class)
	}
	return Attribute{} // Empty attribute, will be ignored
}

// Classes merges multiple class values.
// Accepts string, []string, and map[string]bool (map keys are sorted).
func Classes(classes ...any) Attribute {
	var result []string
	for _, c := range classes {
		switch v := c.(type) {
		case string:
			if v != "" {
				result = append(result, v)
			}
		case []string:
			for _, s := range v {
				if s != "" {
					result = append(result, s)
				}
			}
		case map[string]bool:
			keys := make([]string, 0, len(v))
			for class, include := range v {
				if include && class != "" {
					keys = append(keys, class)
				}
			}
			sort.Strings(keys)
			result = append(result, keys...)
		}
	}
	return attr("class", strings.Join(result, " "))
}

// AttrIf adds any attribute conditionally.
func AttrIf(condition bool, a Attribute) Attribute {
	if condition {
		return a
	}
	return Attribute{}
}

// Data creates a data-* attribute.
// Example: Data("id", "123") → data-id="123"
func Data(key, value string) Attribute { return attr("data-"+key, value) }

// Role sets the role attribute.
func Role(role string) Attribute { return attr("role", role) }

// AriaLabel sets the aria-label attribute.
func AriaLabel(label string) Attribute { return attr("aria-label", label) }

// AriaHidden sets the aria-hidden attribute.
func AriaHidden(hidden bool) Attribute { return attr("aria-hidden", hidden) }

// AriaExpanded sets the aria-expanded attribute.
func AriaExpanded(expanded bool) Attribute { return attr("aria-expanded", expanded) }

// TabIndex sets the tabindex attribute.
func TabIndex(index int) Attribute { return attr("tabindex", index) }

// TitleAttr sets the title attribute.
func TitleAttr(title string) Attribute { return attr("title", title) }

// Links and media

// Href sets the href attribute.
func Href(url string) Attribute { return attr("href", url) }

// Target sets the target attribute.
func Target(target string) Attribute { return attr("target", target) }

// Rel sets the rel attribute.
func Rel(rel string) Attribute { return attr("rel", rel) }

// Src sets the src attribute.
func Src(url string) Attribute { return attr("src", url) }

// Alt sets the alt attribute.
func Alt(text string) Attribute { return attr("alt", text) }

// Width sets the width attribute.
func Width(w int) Attribute { return attr("width", w) }

// Height sets the height attribute.
func Height(h int) Attribute { return attr("height", h) }

// Forms

// Name sets the name attribute.
func Name(name string) Attribute { return attr("name", name) }

// Type sets the type attribute.
func Type(t string) Attribute { return attr("type", t) }

// Placeholder sets the placeholder attribute.
func Placeholder(text string) Attribute { return attr("placeholder", text) }

// Required sets the required attribute.
func Required() Attribute { return attr("required", true) }

// Selected sets the selected attribute.
func Selected() Attribute { return attr("selected", true) }

// For sets the for attribute on labels.
func For(id string) Attribute { return attr("for", id) }

// Action sets the action attribute.
func Action(url string) Attribute { return attr("action", url) }

// Method sets the method attribute.
func Method(method string) Attribute { return attr("method", method) }

// Styles, listeners and calls

// Prop creates a style property for Style.
func Prop(name string, value any) StyleProp {
	return StyleProp{Name: name, Value: ValueOf(value)}
}

// Style sets style properties. Several Style attributes on one element
// accumulate, later properties overriding earlier ones of the same name.
func Style(props ...StyleProp) Attribute {
	return Attribute{Name: "style", Values: []AttrValue{StyleValue(props...)}}
}

// On attaches an event listener. The listener is identified by event and id;
// handler is carried opaquely for the binding.
func On(event, id string, handler any) Attribute {
	return Attribute{
		Name:   "on" + event,
		Values: []AttrValue{ListenerValue(Listener{Event: event, ID: id, Handler: handler})},
	}
}

// Call attaches a function call descriptor under the given attribute name.
func Call(name, fn string, args ...any) Attribute {
	values := make([]Value, len(args))
	for i, a := range args {
		values[i] = ValueOf(a)
	}
	return Attribute{Name: name, Values: []AttrValue{CallValue(FunctionCall{Name: fn, Args: values})}}
}

// InnerHTML sets trusted inner markup through a call descriptor.
func InnerHTML(html string) Attribute { return Call("inner_html", "set_inner_html", html) }
