package ir

// Strip returns a copy of v with every Undefined removed: object members
// holding Undefined are dropped and Undefined array elements are skipped.
// Null and the empty string survive. A top-level Undefined becomes nil.
func Strip(v Value) Value {
	switch val := v.(type) {
	case Undefined:
		return nil
	case Array:
		out := make(Array, 0, len(val))
		for _, elem := range val {
			if _, ok := elem.(Undefined); ok {
				continue
			}
			out = append(out, Strip(elem))
		}
		return out
	case Object:
		out := make(Object, len(val))
		for k, elem := range val {
			if _, ok := elem.(Undefined); ok {
				continue
			}
			out[k] = Strip(elem)
		}
		return out
	default:
		return v
	}
}

// StripObject is Strip for objects. A nil object yields an empty one.
func StripObject(obj Object) Object {
	if obj == nil {
		return Object{}
	}
	return Strip(obj).(Object)
}

// Merge applies patch over dst one level deep and returns the result.
// Members of patch replace members of dst; Undefined members are ignored,
// so an unset field never clears a stored one. dst is not modified.
func Merge(dst, patch Object) Object {
	out := make(Object, len(dst)+len(patch))
	for k, v := range dst {
		out[k] = v
	}
	for k, v := range patch {
		if _, ok := v.(Undefined); ok {
			continue
		}
		out[k] = Strip(v)
	}
	return out
}
