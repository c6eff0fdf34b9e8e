package board

const (
	// BoardDim is the number of rows and columns of a standard board.
	BoardDim = 15
	// CenterRow and CenterCol locate the square the first move must cover.
	CenterRow = 7
	CenterCol = 7
)

var (
	// CrosswordGameBoard is the standard symmetric bonus layout, one string
	// per row. The center square is a double word score.
	CrosswordGameBoard []string
)

func init() {
	CrosswordGameBoard = []string{
		`=  '   =   '  =`,
		` -   "   "   - `,
		`  -   ' '   -  `,
		`'  -   '   -  '`,
		`    -     -    `,
		` "   "   "   " `,
		`  '   ' '   '  `,
		`=  '   -   '  =`,
		`  '   ' '   '  `,
		` "   "   "   " `,
		`    -     -    `,
		`'  -   '   -  '`,
		`  -   ' '   -  `,
		` -   "   "   - `,
		`=  '   =   '  =`,
	}
}
