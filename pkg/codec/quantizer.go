package codec

// qTrans maps the legacy 64-step quantizer scale onto the native
// 128-step quantizer index.
var qTrans = [64]int{
	0, 1, 2, 3, 4, 5, 7, 8,
	9, 10, 12, 13, 15, 17, 18, 19,
	20, 21, 23, 24, 25, 26, 27, 28,
	29, 30, 31, 33, 35, 37, 39, 41,
	43, 45, 47, 49, 51, 53, 55, 57,
	59, 61, 64, 67, 70, 73, 76, 79,
	82, 85, 88, 91, 94, 97, 100, 103,
	106, 109, 112, 115, 118, 121, 124, 127,
}

// ReverseQuantizer converts a native quantizer index into the legacy
// 64-step scale, picking the smallest legacy value whose native
// equivalent is not below q.
func ReverseQuantizer(q int) int {
	for i, native := range qTrans {
		if native >= q {
			return i
		}
	}
	return len(qTrans) - 1
}
