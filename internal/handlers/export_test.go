package handlers

// SessionCount returns the number of registered chat sessions.
func (m Main) SessionCount() int {
	return m.sessions.Len()
}
