package sel810

import "github.com/sirupsen/logrus"

// opcodeNames indexes the top 4 bits of IR (the primary opcode field) for
// breakpoint/trace diagnostics, one entry per primary opcode -- full
// disassembly of the augmented sub-op space is not part of this surface.
var opcodeNames = [16]string{
	0:  "AUG00",
	1:  "LAA",
	2:  "LBA",
	3:  "STA",
	4:  "STB",
	5:  "AMA",
	6:  "SMA",
	7:  "MPY",
	8:  "DIV",
	9:  "BRU",
	10: "SPB",
	11: "CIO", // augmented-13: control I/O & priority interrupt
	12: "IMS",
	13: "CMA",
	14: "AMB",
	15: "DIO", // augmented-17: data I/O
}

// mnemonic returns the decoded primary-opcode mnemonic for ir, for use in
// breakpoint diagnostics.
func mnemonic(ir uint16) string {
	return opcodeNames[ir>>12]
}

// newLogger returns logger if non-nil, otherwise the package-wide
// standard logrus logger. logrus is the one structured-logging library
// the retrieval pack actually imports (other_examples/
// vatine-censor932__cpu.go). The common-case decode path never logs;
// only the rare branches log: breakpoint fires at warn level, and IOHOLD
// enter/exit, interrupt dispatch and undefined-opcode no-ops at debug level.
func newLogger(logger *logrus.Logger) *logrus.Logger {
	if logger != nil {
		return logger
	}
	return logrus.StandardLogger()
}
