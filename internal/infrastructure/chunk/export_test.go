package chunk

func SetAfterWrite(a *Assembler, fn func(uploadID string)) {
	a.afterWrite = fn
}

func ForgetSession(a *Assembler, uploadID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.sessions, uploadID)
}
