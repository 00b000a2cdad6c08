package model

// IncrementString increments the trailing run of digits in s. The run keeps
// its width ("A009" -> "A010") unless every digit carries, in which case it
// grows by one ("99" -> "100", "A99" -> "A100"). A string without trailing
// digits gets "1" appended.
func IncrementString(s string) string {
	b := []byte(s)
	i := len(b) - 1
	for i >= 0 && b[i] >= '0' && b[i] <= '9' {
		i--
	}
	start := i + 1
	if start == len(b) {
		return s + "1"
	}

	for j := len(b) - 1; j >= start; j-- {
		if b[j] < '9' {
			b[j]++
			return string(b)
		}
		b[j] = '0'
	}

	out := make([]byte, 0, len(b)+1)
	out = append(out, b[:start]...)
	out = append(out, '1')
	out = append(out, b[start:]...)
	return string(out)
}
