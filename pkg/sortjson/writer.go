package sortjson

// writeElement renders e in canonical form. Scalars and keys are copied from
// data unchanged, punctuation is synthesized, whitespace is never emitted.
func writeElement(w *BufferedWriter, data []byte, e *element) error {
	switch e.kind {
	case kindScalar:
		_, err := w.Write(data[e.start : e.start+e.length])
		return err
	case kindArray:
		if err := w.WriteByte('['); err != nil {
			return err
		}
		for i := range e.items {
			if i > 0 {
				if err := w.WriteByte(','); err != nil {
					return err
				}
			}
			if err := writeElement(w, data, &e.items[i]); err != nil {
				return err
			}
		}
		return w.WriteByte(']')
	case kindObject:
		if err := w.WriteByte('{'); err != nil {
			return err
		}
		for i := range e.entries {
			en := &e.entries[i]
			if i > 0 {
				if err := w.WriteByte(','); err != nil {
					return err
				}
			}
			if _, err := w.Write(data[en.keyStart : en.keyStop+1]); err != nil {
				return err
			}
			if err := w.WriteByte(':'); err != nil {
				return err
			}
			if err := writeElement(w, data, &en.value); err != nil {
				return err
			}
		}
		return w.WriteByte('}')
	}
	return nil
}
