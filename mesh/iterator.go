package mesh

// Iterator walks the trixels held by one result buffer.
//
// The iterator views the buffer as it was when the iterator was created and
// is invalidated by the next query into the same buffer. It is not safe for
// concurrent use.
type Iterator struct {
	ids []Trixel
	pos int
}

// NewIterator returns an iterator over the current contents of buf.
func NewIterator(m *Mesh, buf Buffer) *Iterator {
	if buf < 0 || buf >= NumBuffers {
		return &Iterator{}
	}
	return &Iterator{ids: m.buffers[buf]}
}

// HasNext reports whether Next will return another trixel.
func (it *Iterator) HasNext() bool { return it.pos < len(it.ids) }

// Next returns the next trixel. It must only be called when HasNext is true.
func (it *Iterator) Next() Trixel {
	t := it.ids[it.pos]
	it.pos++
	return t
}

// Reset rewinds the iterator to the first trixel.
func (it *Iterator) Reset() { it.pos = 0 }

// Size returns the total number of trixels, regardless of position.
func (it *Iterator) Size() int { return len(it.ids) }
