package encoding

type layout struct {
	size  int
	align int
}

func align(a, b int) int {
	if b <= 1 {
		return a
	}
	return (a + b - 1) &^ (b - 1)
}
