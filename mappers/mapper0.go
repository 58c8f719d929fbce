package mappers

func init() {
	RegisterMapper(0, &mapper0{baseMapper: newBaseMapper(0, "NROM")})
}

// mapper0 implements NROM: no bank switching. PRG is 16KB or 32KB,
// mirrored into the 0x8000-0xFFFF window (a 16KB cartridge appears
// twice); CHR is a single fixed 8KB bank (ROM or RAM).
type mapper0 struct {
	*baseMapper
}

func (m *mapper0) PrgRead(addr uint16) uint8 {
	return m.rom.PrgRead(addr - 0x8000)
}

func (m *mapper0) PrgWrite(addr uint16, val uint8) {
	// NROM PRG is ROM; writes to it are ignored on real hardware.
}

func (m *mapper0) ChrRead(addr uint16) uint8 {
	return m.rom.ChrRead(addr)
}

func (m *mapper0) ChrWrite(addr uint16, val uint8) {
	m.rom.ChrWrite(addr, val)
}
