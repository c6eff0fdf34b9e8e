package board

// This file contains some sample filled boards, used solely for testing.

// VsWho names a sample board.
type VsWho []string

var (
	// VsCat has CAT across the center row, (7,7) to (7,9).
	VsCat = VsWho{
		"",
		"",
		"",
		"",
		"",
		"",
		"",
		".......CAT",
	}

	// VsCross has CAT across and COW down from the C, sharing (7,7).
	VsCross = VsWho{
		"",
		"",
		"",
		"",
		"",
		"",
		"",
		".......CAT",
		".......O",
		".......W",
	}
)
