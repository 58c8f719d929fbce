package mappers

func init() {
	RegisterMapper(66, &mapper66{baseMapper: newBaseMapper(66, "GxROM")})
}

// mapper66 implements GxROM: the mirror image of Color Dreams' register
// layout — bits 4-5 select a 32KB PRG bank, bits 0-1 select an 8KB CHR
// bank, in a single $8000-$FFFF write.
type mapper66 struct {
	*baseMapper

	prgBank uint8
	chrBank uint8
}

func (m *mapper66) PrgRead(addr uint16) uint8 {
	return m.rom.PrgByte(int(m.prgBank)*0x8000 + int(addr-0x8000))
}

func (m *mapper66) PrgWrite(addr uint16, val uint8) {
	m.prgBank = (val >> 4) & 0x03
	m.chrBank = val & 0x03
}

func (m *mapper66) ChrRead(addr uint16) uint8 {
	return m.rom.ChrByte(int(m.chrBank)*0x2000 + int(addr))
}

func (m *mapper66) ChrWrite(addr uint16, val uint8) {
	m.rom.ChrByteWrite(int(m.chrBank)*0x2000+int(addr), val)
}
