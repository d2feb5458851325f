package chat

// typingBuffer holds received reply text that has not been revealed yet.
// It is not safe for concurrent use; the Client guards it.
type typingBuffer struct {
	pending []rune
}

func (b *typingBuffer) write(s string) {
	b.pending = append(b.pending, []rune(s)...)
}

// next pops the oldest pending rune.
func (b *typingBuffer) next() (rune, bool) {
	if len(b.pending) == 0 {
		return 0, false
	}
	r := b.pending[0]
	b.pending = b.pending[1:]
	return r, true
}

// flush returns everything pending and empties the buffer.
func (b *typingBuffer) flush() string {
	s := string(b.pending)
	b.pending = nil
	return s
}

func (b *typingBuffer) reset() {
	b.pending = nil
}

func (b *typingBuffer) empty() bool {
	return len(b.pending) == 0
}
