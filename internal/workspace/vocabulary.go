package workspace

// mnemonics is the 6502 instruction set ca65 recognizes in command-context,
// independent of the active .setcpu target.
var mnemonics = []string{
	"adc", "and", "asl", "bcc", "bcs", "beq", "bit", "bmi", "bne", "bpl",
	"brk", "bvc", "bvs", "clc", "cld", "cli", "clv", "cmp", "cpx", "cpy",
	"dec", "dex", "dey", "eor", "inc", "inx", "iny", "jmp", "jsr", "lda",
	"ldx", "ldy", "lsr", "nop", "ora", "pha", "php", "pla", "plp", "rol",
	"ror", "rti", "rts", "sbc", "sec", "sed", "sei", "sta", "stx", "sty",
	"tax", "tay", "tsx", "txa", "txs", "tya",
}

// controlCommands is the set of ca65 pseudo-ops offered in command-context,
// grounded on the directive set internal/scanner recognizes plus the rest
// of ca65's conditional-assembly and declaration vocabulary.
var controlCommands = []string{
	".addr", ".align", ".ascii", ".asciiz", ".assert", ".autoimport",
	".bankbytes", ".byt", ".byte", ".case", ".code", ".data", ".dbyt",
	".define", ".dword", ".else", ".elseif", ".enum", ".endenum",
	".endif", ".endmac", ".endmacro", ".endproc", ".endrep", ".endrepeat",
	".endscope", ".endstruct", ".endunion", ".error", ".export",
	".exportzp", ".faraddr", ".feature", ".global", ".globalzp", ".if",
	".ifdef", ".ifndef", ".import", ".importzp", ".incbin", ".include",
	".literal", ".local", ".localchar", ".mac", ".macro", ".org", ".out",
	".proc", ".repeat", ".res", ".reloc", ".rodata", ".scope",
	".segment", ".setcpu", ".struct", ".tag", ".union", ".warning",
	".word", ".zeropage",
}

// pseudoFunctions is ca65's ".xxx(...)"-style function vocabulary offered
// in operand-context alongside symbols.
var pseudoFunctions = []string{
	".addrsize", ".bankbyte", ".blank", ".const", ".defined", ".hibyte",
	".hiword", ".ident", ".ismnem", ".left", ".lobyte", ".loword",
	".match", ".mid", ".right", ".sizeof", ".sprintf", ".string",
	".strlen", ".tcount", ".xmatch",
}

// pseudoVariables is ca65's bare pseudo-variable vocabulary offered in
// operand-context alongside symbols.
var pseudoVariables = []string{
	".asize", ".cpu", ".isize", ".paramcount", ".time", ".version",
}
