package mappers

func init() {
	RegisterMapper(9, &mapper9{
		baseMapper: newBaseMapper(9, "MMC2"),
		latch0:     0xFE,
		latch1:     0xFE,
		mirror:     MIRROR_VERTICAL,
	})
}

// mapper9 implements MMC2 (Punch-Out!!'s board): an 8KB PRG bank
// switchable at $8000 with the last three 8KB banks fixed above it,
// and two independent 4KB CHR windows whose bank selection follows a
// latch that flips when the PPU fetches one of four specific tile
// addresses. The latch update happens inline in ChrRead, since that's
// the only place that sees the PPU address being fetched.
type mapper9 struct {
	*baseMapper

	prgBank uint8
	chrBank [4]uint8

	latch0, latch1 uint8 // holds 0xFD or 0xFE
	mirror         uint8
}

func (m *mapper9) PrgRead(addr uint16) uint8 {
	if addr < 0xA000 {
		return m.rom.PrgByte(int(m.prgBank)*0x2000 + int(addr-0x8000))
	}

	banks8k := m.rom.PrgSize() / 0x2000
	idx := int(addr-0xA000) / 0x2000
	off := int(addr-0xA000) % 0x2000
	bank := banks8k - 3 + idx
	return m.rom.PrgByte(bank*0x2000 + off)
}

func (m *mapper9) PrgWrite(addr uint16, val uint8) {
	switch {
	case addr < 0xA000:
		// No register in this range.
	case addr < 0xB000:
		m.prgBank = val & 0x0F
	case addr < 0xC000:
		m.chrBank[0] = val & 0x1F
	case addr < 0xD000:
		m.chrBank[1] = val & 0x1F
	case addr < 0xE000:
		m.chrBank[2] = val & 0x1F
	case addr < 0xF000:
		m.chrBank[3] = val & 0x1F
	default:
		if val&0x01 != 0 {
			m.mirror = MIRROR_HORIZONTAL
		} else {
			m.mirror = MIRROR_VERTICAL
		}
	}
}

func (m *mapper9) ChrRead(addr uint16) uint8 {
	var val uint8
	if addr < 0x1000 {
		bank := m.chrBank[0]
		if m.latch0 == 0xFE {
			bank = m.chrBank[1]
		}
		val = m.rom.ChrByte(int(bank)*0x1000 + int(addr))
	} else {
		bank := m.chrBank[2]
		if m.latch1 == 0xFE {
			bank = m.chrBank[3]
		}
		val = m.rom.ChrByte(int(bank)*0x1000 + int(addr-0x1000))
	}

	switch {
	case addr >= 0x0FD8 && addr <= 0x0FDF:
		m.latch0 = 0xFD
	case addr >= 0x0FE8 && addr <= 0x0FEF:
		m.latch0 = 0xFE
	case addr >= 0x1FD8 && addr <= 0x1FDF:
		m.latch1 = 0xFD
	case addr >= 0x1FE8 && addr <= 0x1FEF:
		m.latch1 = 0xFE
	}

	return val
}

func (m *mapper9) ChrWrite(addr uint16, val uint8) {
	// MMC2 boards ship CHR ROM; nothing to write.
}

func (m *mapper9) MirroringMode() uint8 {
	return m.mirror
}
