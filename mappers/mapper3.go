package mappers

func init() {
	RegisterMapper(3, &mapper3{baseMapper: newBaseMapper(3, "CNROM")})
}

// mapper3 implements CNROM: PRG is fixed (16KB mirrored or 32KB, same
// as NROM); any $8000-$FFFF write selects an 8KB CHR ROM bank. Boards
// commonly bus-conflict on this write, but we just take the written
// value directly.
type mapper3 struct {
	*baseMapper

	chrBank uint8
}

func (m *mapper3) PrgRead(addr uint16) uint8 {
	return m.rom.PrgRead(addr - 0x8000)
}

func (m *mapper3) PrgWrite(addr uint16, val uint8) {
	m.chrBank = val
}

func (m *mapper3) ChrRead(addr uint16) uint8 {
	return m.rom.ChrByte(int(m.chrBank)*0x2000 + int(addr))
}

func (m *mapper3) ChrWrite(addr uint16, val uint8) {
	// CHR is ROM; writes are ignored.
}
