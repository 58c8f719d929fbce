// Package mos6502 implements the MOS Technologies 6502 processor
// https://en.wikipedia.org/wiki/MOS_Technology_6502
package mos6502

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/bits"
	"os"
	"os/signal"
	"reflect"
	"strings"
	"syscall"
	"time"
)

const (
	RAM_SIZE = 0x0800 // 2k of real (non-cartridge) memory
)

// 6502 Interrupt Vectors
// https://en.wikipedia.org/wiki/Interrupts_in_65xx_processors
const (
	INT_IRQ   = 0xFFFE
	INT_BRK   = INT_IRQ
	INT_RESET = 0xFFFC
	INT_NMI   = 0xFFFA
)

// 6502 Processor Status Flags
// https://www.nesdev.org/obelisk-6502-guide/registers.html
const (
	STATUS_FLAG_CARRY             = 1 << 0 // C
	STATUS_FLAG_ZERO              = 1 << 1 // Z
	STATUS_FLAG_INTERRUPT_DISABLE = 1 << 2 // I
	STATUS_FLAG_DECIMAL           = 1 << 3 // D
	STATUS_FLAG_BREAK             = 1 << 4 // B
	UNUSED_STATUS_FLAG            = 1 << 5 // This is never used but is always on
	STATUS_FLAG_OVERFLOW          = 1 << 6 // V
	STATUS_FLAG_NEGATIVE          = 1 << 7 // N
)

// How much addressable memory we have
const MEM_SIZE = math.MaxUint16 + 1

var flagMap map[uint8]byte = map[uint8]byte{
	STATUS_FLAG_CARRY:             'C',
	STATUS_FLAG_ZERO:              'Z',
	STATUS_FLAG_INTERRUPT_DISABLE: 'I',
	STATUS_FLAG_DECIMAL:           'D',
	STATUS_FLAG_BREAK:             'B',
	UNUSED_STATUS_FLAG:            '-',
	STATUS_FLAG_OVERFLOW:          'V',
	STATUS_FLAG_NEGATIVE:          'N',
}

func statusString(p uint8) string {
	var sb strings.Builder

	flags := []uint8{
		STATUS_FLAG_NEGATIVE,
		STATUS_FLAG_OVERFLOW,
		UNUSED_STATUS_FLAG,
		STATUS_FLAG_BREAK,
		STATUS_FLAG_DECIMAL,
		STATUS_FLAG_INTERRUPT_DISABLE,
		STATUS_FLAG_ZERO,
		STATUS_FLAG_CARRY,
	}

	for _, f := range flags {
		if p&f > 0 {
			sb.WriteByte(flagMap[f])
		} else {
			sb.WriteByte('.')
		}
	}

	return sb.String()
}

// Bus is the address space a CPU is wired to. The owning console hands
// the CPU a Bus that knows how to route reads and writes across
// internal RAM, PPU/APU registers and the cartridge mapper.
type Bus interface {
	Read(addr uint16) uint8
	Write(addr uint16, val uint8)
}

// CPU implements all of the machine state for the 6502.
type CPU struct {
	acc    uint8  // main register
	x, y   uint8  // index registers
	status uint8  // a register for storing various status bits
	sp     uint8  // stack pointer - stack is 0x0100-0x01FF so only 8 bits needed
	pc     uint16 // the program counter
	bus    Bus    // the rest of the addressable world
	cycles int    // cycles consumed by the most recently executed step

	nmiPending bool // edge-triggered, latched until serviced
	irqLine    bool // level-sensitive; asserted by APU/mapper sources
	dmaStall   int  // cycles to burn for an in-flight OAM DMA transfer
}

func (c *CPU) String() string {
	return fmt.Sprintf("A,X,Y: %4d, %4d, %4d; PC: 0x%04x, SP: 0x%02x, P: %s; OP: %s", c.acc, c.x, c.y, c.pc, c.sp, statusString(c.status), opcodes[c.Read(c.pc)])
}

func New(b Bus) *CPU {
	// Power on state values from:
	// https://nesdev-wiki.nes.science/wikipages/CPU_ALL.xhtml#Power_up_state
	// B is not normally visible in the register, but per docs, is
	// set at startup.
	c := &CPU{
		sp:     0xFD,
		bus:    b,
		status: UNUSED_STATUS_FLAG | STATUS_FLAG_BREAK | STATUS_FLAG_INTERRUPT_DISABLE,
	}
	c.pc = c.Read16(INT_RESET)
	return c
}

var invalidInstruction = errors.New("invalid instruction")

func (c *CPU) getInst() (opcode, error) {
	m := c.Read(c.pc)
	op, ok := opcodes[m]
	if !ok {
		return opcode{}, fmt.Errorf("pc: %d, inst: 0x%02x - %w", c.pc, m, invalidInstruction)
	}

	return op, nil
}

// Inst returns the opcode the CPU is currently positioned at, without
// advancing anything. Useful for debug displays.
func (c *CPU) Inst() opcode {
	op, _ := c.getInst()
	return op
}

// PC returns the current program counter.
func (c *CPU) PC() uint16 {
	return c.pc
}

// SetPC forces the program counter to addr. Mostly useful for tests
// and debug tooling that want to start execution at a specific entry
// point (eg nestest's automated-mode entry at $C000).
func (c *CPU) SetPC(addr uint16) {
	c.pc = addr
}

// StackAddr returns the absolute address the stack pointer currently
// references.
func (c *CPU) StackAddr() uint16 {
	return STACK_PAGE + uint16(c.sp)
}

// Read returns the byte from memory at addr.
func (c *CPU) Read(addr uint16) uint8 {
	return c.bus.Read(addr)
}

// Write stores val to memory at addr.
func (c *CPU) Write(addr uint16, val uint8) {
	c.bus.Write(addr, val)
}

// Read16 returns the two bytes from memory at addr (lower byte is
// first).
func (c *CPU) Read16(addr uint16) uint16 {
	lsb := uint16(c.Read(addr))
	msb := uint16(c.Read(addr + 1))

	return (msb << 8) | lsb
}

// Write16 stores val at addr (lower byte is first).
func (c *CPU) Write16(addr, val uint16) {
	c.Write(addr, uint8(val&0x00FF))
	c.Write(addr+1, uint8(val>>8))
}

// LoadMem copies data into memory starting at addr. Intended for test
// harnesses and debug tooling that want to seed a program image
// directly rather than going through a ROM/mapper.
func (c *CPU) LoadMem(addr uint16, data []byte) {
	for i, b := range data {
		c.Write(addr+uint16(i), b)
	}
}

// memRange returns a slice of memory addresses from low to
// high. Mostly useful for debugging.
func (c *CPU) memRange(low, high uint16) []uint8 {
	ret := make([]uint8, 0, int(high-low)+1)
	for i := low; i <= high; i += 1 {
		ret = append(ret, c.Read(uint16(i)))
	}

	return ret
}

// getOperandAddr takes a mode and returns an address for the operand
// referenced by the program counter. It assumes that the counter was
// incremented past the actual instruction itself.
func (c *CPU) getOperandAddr(mode uint8) uint16 {
	var addr uint16
	switch mode {
	case ACCUMULATOR:
		panic("ACCUMULATOR Address mode should never use this method")
	case IMPLICIT:
		panic("IMPLICIT Address mode should never use this method")
	case IMMEDIATE:
		addr = c.pc
	case ZERO_PAGE:
		addr = uint16(c.Read(c.pc))
	case ZERO_PAGE_X:
		return uint16(c.Read(c.pc) + c.x)
	case ZERO_PAGE_Y:
		return uint16(c.Read(c.pc) + c.y)
	case ABSOLUTE:
		return c.Read16(c.pc)
	case ABSOLUTE_X:
		a := c.Read16(c.pc)
		addr = a + uint16(c.x)
		c.cycles += int(extraCycles(a, addr))
	case ABSOLUTE_Y:
		a := c.Read16(c.pc)
		addr = a + uint16(c.y)
		c.cycles += int(extraCycles(a, addr))
	case INDIRECT:
		// The indirect JMP vector never crosses a page: if the
		// low byte of the pointer is 0xFF, the high byte is
		// fetched from the start of the same page rather than
		// the next one. This replicates a well-known 6502 bug.
		ptr := c.Read16(c.pc)
		lo := c.Read(ptr)
		var hi uint8
		if ptr&0x00FF == 0x00FF {
			hi = c.Read(ptr & 0xFF00)
		} else {
			hi = c.Read(ptr + 1)
		}
		return (uint16(hi) << 8) | uint16(lo)
	case INDIRECT_X:
		return c.Read16Wrapped(uint16(c.Read(c.pc) + c.x))
	case INDIRECT_Y:
		a := c.Read16Wrapped(uint16(c.Read(c.pc)))
		addr = a + uint16(c.y)
		c.cycles += int(extraCycles(a, addr))
	case RELATIVE:
		// Relative from PC at time of instruction
		// execution. We advance pc as soon as we eat the byte
		// from memory to decode the instruction, so we need
		// to account for that here and step over the relative
		// argument while calculating the new target address.
		addr = (c.pc + 1) + uint16(int8(c.Read(c.pc)))
	default:
		panic("Invalid addressing mode")

	}

	return addr
}

// Read16Wrapped behaves like Read16 except that it stays within the
// zero page: the high byte wraps to the start of the page instead of
// spilling into page 1. This is what (INDIRECT_X) and (INDIRECT_Y)
// actually do on real hardware.
func (c *CPU) Read16Wrapped(addr uint16) uint16 {
	lo := uint16(c.Read(addr & 0x00FF))
	hi := uint16(c.Read((addr + 1) & 0x00FF))
	return (hi << 8) | lo
}

// Reset puts the CPU back into its post-reset state and jumps to the
// address stored at the reset vector.
func (c *CPU) Reset() {
	// The unused flag always reads as 1; PLP also keeps it set.
	c.flagsOn(STATUS_FLAG_INTERRUPT_DISABLE | UNUSED_STATUS_FLAG)
	c.pc = c.Read16(INT_RESET)
}

// TriggerNMI latches a non-maskable interrupt request. NMI is
// edge-triggered: the request is serviced (and the latch cleared) the
// next time Step is called, regardless of the interrupt-disable flag.
func (c *CPU) TriggerNMI() {
	c.nmiPending = true
}

// SetIRQLine sets the level of the maskable interrupt line. Unlike
// NMI, IRQ is level-sensitive and suppressed while the
// interrupt-disable flag is set; callers (APU frame sequencer,
// mapper IRQ sources) hold the line high until their condition
// clears.
func (c *CPU) SetIRQLine(active bool) {
	c.irqLine = active
}

// AddDMACycles stalls the CPU for n extra cycles, consumed by the
// next Step call instead of executing an instruction. Used by OAM DMA
// ($4014), which halts the CPU for 513 or 514 cycles while 256 bytes
// are copied into OAM.
func (c *CPU) AddDMACycles(n int) {
	c.dmaStall += n
}

func readAddress(prompt string) uint16 {
	var a uint16
	fmt.Printf(prompt)
	fmt.Scanf("%04x\n", &a)
	return a
}

func (c *CPU) BIOS(ctx context.Context) {

	sigQuit := make(chan os.Signal, 1)
	signal.Notify(sigQuit, syscall.SIGINT, syscall.SIGTERM)

	breaks := make(map[uint16]struct{})

	for {
		fmt.Printf("%s\n\n", c)
		fmt.Println("(B)reak - add breakpoint")
		fmt.Println("(C)lear - cleear breakpoints")
		fmt.Println("(R)un - run to completion")
		fmt.Println("(S)step - step the cpu one instruction")
		fmt.Println("R(e)set - hit the reset button")
		fmt.Println("(M)memory - select a memory range to display")
		fmt.Println("S(t)ack - show last 3 items on the stack")
		fmt.Println("(I)instruction - show instruction memory locations")
		fmt.Println("(Q)uit - shutdown the gintentdo")
		fmt.Printf("Choice: ")

		var in rune
		fmt.Scanf("%c\n", &in)

		switch in {
		case 'b', 'B':
			breaks[readAddress("Breakpoint (eg: ff15): ")] = struct{}{}
		case 'c', 'C':
			breaks = make(map[uint16]struct{})
		case 'q', 'Q':
			return
		case 'r', 'R':
			cctx, cancel := context.WithCancel(ctx)
			go func(ctx context.Context) {
				for {
					select {
					case <-sigQuit:
						cancel()
					case <-ctx.Done():
						return
					}
				}
			}(cctx)
			c.Run(cctx, breaks)
		case 's', 'S':
			c.Step()
		case 't', 'T':
			fmt.Println()
			i := 0
			for {
				m := c.StackAddr() + uint16(i)
				fmt.Printf("0x%04x: 0x%02x ", m, c.Read(m))
				if m == 0x00ff || i == 2 {
					break
				}
				i += 1
			}
			fmt.Printf("\n\n")
		case 'i', 'I':
			fmt.Println()
			op := opcodes[c.Read(c.pc)]
			for i := 0; i < int(op.bytes); i++ {
				m := c.pc + uint16(i)
				fmt.Printf("0x%04x: 0x%02x ", m, c.Read(m))
			}
			fmt.Printf("\n\n")
		case 'e', 'E':
			c.Reset()
		case 'm', 'M':
			fmt.Println()
			low := readAddress("Low address (eg f00d): ")
			high := readAddress("High address (eg beef): ")
			fmt.Println()

			x := 1
			i := low
			for {
				fmt.Printf("0x%04x: 0x%02x ", i, c.Read(i))
				if x%5 == 0 {
					fmt.Println()
				}
				if i == high || i == math.MaxUint16 {
					break
				}
				x += 1
				i += 1
			}
			fmt.Printf("\n\n")
		}
	}
}

func (c *CPU) Run(ctx context.Context, breaks map[uint16]struct{}) {
	// https://www.nesdev.org/wiki/CPU#Frequencies
	t := time.NewTicker(time.Nanosecond * 559)
	for {
		select {
		case <-t.C:
			c.Step()
			fmt.Println(c)
		case <-ctx.Done():
			return
		}

		if _, ok := breaks[c.pc]; ok {
			fmt.Printf("Hit breakpoint at 0%04x\n", c.pc)
			return
		}
	}
}

// Step executes exactly one instruction (or services a pending
// interrupt, or burns a pending DMA stall) and returns the number of
// CPU cycles it consumed. Callers that need cycle-accurate PPU/APU
// behavior advance those devices by the returned count.
func (c *CPU) Step() int {
	if c.nmiPending {
		c.nmiPending = false
		return c.serviceInterrupt(INT_NMI)
	}

	if c.irqLine && c.status&STATUS_FLAG_INTERRUPT_DISABLE == 0 {
		return c.serviceInterrupt(INT_IRQ)
	}

	if c.dmaStall > 0 {
		n := c.dmaStall
		c.dmaStall = 0
		c.cycles = n
		return n
	}

	op, err := c.getInst()
	if err != nil {
		panic(err)
	}

	c.cycles = int(op.cycles)
	c.pc += 1
	opc := c.pc

	v := reflect.ValueOf(c)
	v.MethodByName(op.name).Call([]reflect.Value{reflect.ValueOf(op.mode)})

	// If we didn't branch, move the PC beyond the full width of
	// the instruction. We consumed the first byte for the
	// instruction code, so only skip over the remaining argument
	// bytes.
	if c.pc == opc {
		c.pc += uint16(op.bytes) - 1
	}

	return c.cycles
}

// serviceInterrupt pushes PC and status, jumps to the handler stored
// at vector, and returns the 7-cycle cost every interrupt sequence
// takes.
func (c *CPU) serviceInterrupt(vector uint16) int {
	c.pushAddress(c.pc)
	c.pushStack(c.status &^ STATUS_FLAG_BREAK)
	c.flagsOn(STATUS_FLAG_INTERRUPT_DISABLE)
	c.pc = c.Read16(vector)
	c.cycles = 7
	return 7
}

// setNegativeAndZeroFlags sets the STATUS_FLAG_NEGATIVE and
// STATUS_FLAG_ZERO bits of the status register accordingly for the
// value specified in n.
func (c *CPU) setNegativeAndZeroFlags(n uint8) {
	if n == 0 {
		c.flagsOn(STATUS_FLAG_ZERO)
	} else {
		c.flagsOff(STATUS_FLAG_ZERO)
	}

	if n&0b1000_0000 != 0 {
		c.flagsOn(STATUS_FLAG_NEGATIVE)
	} else {
		c.flagsOff(STATUS_FLAG_NEGATIVE)
	}
}

func (c *CPU) pushStack(val uint8) {
	c.Write(c.StackAddr(), val)
	c.sp -= 1
}

func (c *CPU) popStack() uint8 {
	c.sp += 1
	return c.Read(c.StackAddr())
}

func (c *CPU) pushAddress(addr uint16) {
	c.pushStack(uint8(addr >> 8))     // high
	c.pushStack(uint8(addr & 0x00FF)) // low
}

func (c *CPU) popAddress() uint16 {
	return uint16(c.popStack()) | (uint16(c.popStack()) << 8)
}

// flagsOn forces the flags in mask (STATUS_FLAG_XXX|STATUS_FLAG_YYY)
// on in the status register.
func (c *CPU) flagsOn(mask uint8) {
	c.status = c.status | mask
}

// flagsOff forces the flags in mask (STATUS_FLAG_XXX|STATUS_FLAG_YYY)
// off in the status register.
func (c *CPU) flagsOff(mask uint8) {
	c.status = c.status &^ mask
}

// extraCycles returns 0 if addr1 and add2 are in the same page, 1
// otherwise. This is useful for instructions that take a variable
// number of cycles, depending on whether or not a page boundary is
// crossed.
func extraCycles(addr1, addr2 uint16) uint8 {
	if addr1&0xFF00 != addr2&0xFF00 {
		return 1
	}
	return 0
}

// branch will adjust the PC conditionally based on whether the mask
// bits are set and the resulting comparison is expected to be true or
// false. This allows you to check for STATUS_FLAG being set or
// cleared by: branch(STATUS_FLAG_OVERFLOW, false) -> branch
// when OVERFLOW not set.
func (c *CPU) branch(mask uint8, predicate bool) {
	if (c.status&mask > 0) == predicate {
		a := c.getOperandAddr(RELATIVE)
		// Branching instructions take an extra cycle if they
		// cause a page break pc-1 because we increment it
		// right after reading the op, but that's where we
		// branch from so that's where we compare for page
		// break
		c.cycles += int(extraCycles(a, c.pc-1))
		c.cycles += 1 // successful branches take an extra cycle
		c.pc = a
	}
}

// addWithOverflow adds b to c.acc handling overflow, carry and ZN
// flag setting as appropriate. Binary mode only; decimal mode is
// handled separately by decimalAdd.
func (c *CPU) addWithOverflow(b uint8) {
	res16 := uint16(c.acc) + uint16(b) + uint16(c.status&STATUS_FLAG_CARRY)
	res := uint8(res16)

	var mask uint8
	if (res16 & 0x100) != 0 {
		mask = mask | STATUS_FLAG_CARRY
	}
	if (c.acc^res)&(b^res)&0x80 != 0 {
		mask = mask | STATUS_FLAG_OVERFLOW
	}

	c.flagsOff(STATUS_FLAG_CARRY | STATUS_FLAG_OVERFLOW | STATUS_FLAG_NEGATIVE | STATUS_FLAG_ZERO)
	c.flagsOn(mask)

	c.acc = res
	c.setNegativeAndZeroFlags(c.acc)
}

// encodeBCD packs a decimal value 0-99 into a BCD byte.
func encodeBCD(n uint8) uint8 {
	return ((n / 10) << 4) | (n % 10)
}

// decodeBCD unpacks a BCD byte into its decimal value 0-99.
func decodeBCD(b uint8) uint8 {
	return (b>>4)*10 + (b & 0x0F)
}

// decimalAdd implements ADC with the decimal flag set. The NES's 2A03
// never sets D (it has no working decimal mode), but this core models
// the full NMOS 6502 so it can be exercised against the classic 6502
// functional test suite.
func (c *CPU) decimalAdd(b uint8) {
	carryIn := int(c.status & STATUS_FLAG_CARRY)
	sum := int(decodeBCD(c.acc)) + int(decodeBCD(b)) + carryIn
	carryOut := sum >= 100
	if carryOut {
		sum -= 100
	}

	c.acc = encodeBCD(uint8(sum))
	c.flagsOff(STATUS_FLAG_CARRY | STATUS_FLAG_OVERFLOW | STATUS_FLAG_NEGATIVE | STATUS_FLAG_ZERO)
	if carryOut {
		c.flagsOn(STATUS_FLAG_CARRY)
	}
	c.setNegativeAndZeroFlags(c.acc)
}

// decimalSub implements SBC with the decimal flag set. See decimalAdd.
func (c *CPU) decimalSub(b uint8) {
	borrowIn := 1 - int(c.status&STATUS_FLAG_CARRY)
	diff := int(decodeBCD(c.acc)) - int(decodeBCD(b)) - borrowIn
	carryOut := diff >= 0
	if diff < 0 {
		diff += 100
	}

	c.acc = encodeBCD(uint8(diff))
	c.flagsOff(STATUS_FLAG_CARRY | STATUS_FLAG_OVERFLOW | STATUS_FLAG_NEGATIVE | STATUS_FLAG_ZERO)
	if carryOut {
		c.flagsOn(STATUS_FLAG_CARRY)
	}
	c.setNegativeAndZeroFlags(c.acc)
}

// adcValue routes to decimal or binary addition depending on the D
// flag.
func (c *CPU) adcValue(b uint8) {
	if c.status&STATUS_FLAG_DECIMAL != 0 {
		c.decimalAdd(b)
		return
	}
	c.addWithOverflow(b)
}

// sbcValue routes to decimal or binary subtraction depending on the D
// flag.
func (c *CPU) sbcValue(b uint8) {
	if c.status&STATUS_FLAG_DECIMAL != 0 {
		c.decimalSub(b)
		return
	}
	c.addWithOverflow(^b)
}

// baseCMP does comparison operations on a and b, setting flags
// accordingly.
func (c *CPU) baseCMP(a, b uint8) {
	c.setNegativeAndZeroFlags(a - b)
	if a >= b {
		c.flagsOn(STATUS_FLAG_CARRY)
	}
}

// memASL/memLSR/memROL/memROR perform the shift/rotate-and-store
// sequence shared by the ASL/LSR/ROL/ROR memory addressing modes and
// by the combined undocumented opcodes (SLO/SRE/RLA/RRA), returning
// the stored value and updating the carry flag from the bit shifted
// out.
func (c *CPU) memASL(addr uint16) uint8 {
	ov := c.Read(addr)
	nv := ov << 1
	c.Write(addr, nv)
	c.flagsOff(STATUS_FLAG_CARRY)
	if ov&0x80 != 0 {
		c.flagsOn(STATUS_FLAG_CARRY)
	}
	return nv
}

func (c *CPU) memLSR(addr uint16) uint8 {
	ov := c.Read(addr)
	nv := ov >> 1
	c.Write(addr, nv)
	c.flagsOff(STATUS_FLAG_CARRY)
	if ov&0x01 != 0 {
		c.flagsOn(STATUS_FLAG_CARRY)
	}
	return nv
}

func (c *CPU) memROL(addr uint16) uint8 {
	ov := c.Read(addr)
	nv := ov<<1 | (c.status & STATUS_FLAG_CARRY)
	c.Write(addr, nv)
	c.flagsOff(STATUS_FLAG_CARRY)
	if ov&0x80 != 0 {
		c.flagsOn(STATUS_FLAG_CARRY)
	}
	return nv
}

func (c *CPU) memROR(addr uint16) uint8 {
	ov := c.Read(addr)
	nv := ov>>1 | ((c.status & STATUS_FLAG_CARRY) << 7)
	c.Write(addr, nv)
	c.flagsOff(STATUS_FLAG_CARRY)
	if ov&0x01 != 0 {
		c.flagsOn(STATUS_FLAG_CARRY)
	}
	return nv
}

func (c *CPU) ADC(mode uint8) {
	c.adcValue(c.Read(c.getOperandAddr(mode)))
}

func (c *CPU) AND(mode uint8) {
	c.acc = c.acc & c.Read(c.getOperandAddr(mode))
	c.setNegativeAndZeroFlags(c.acc)
}

func (c *CPU) ASL(mode uint8) {
	var ov, nv uint8 // old value, new value
	switch mode {
	case ACCUMULATOR:
		ov = c.acc
		c.acc = c.acc << 1
		nv = c.acc
	default:
		addr := c.getOperandAddr(mode)
		ov = c.Read(addr)
		nv = ov << 1
		c.Write(addr, nv)
	}

	c.flagsOff(STATUS_FLAG_CARRY | STATUS_FLAG_NEGATIVE | STATUS_FLAG_ZERO)
	c.setNegativeAndZeroFlags(nv)
	if ov&0x80 != 0 {
		c.flagsOn(STATUS_FLAG_CARRY)
	}
}

func (c *CPU) BCC(mode uint8) {
	c.branch(STATUS_FLAG_CARRY, false)
}

func (c *CPU) BCS(mode uint8) {
	c.branch(STATUS_FLAG_CARRY, true)
}

func (c *CPU) BEQ(mode uint8) {
	c.branch(STATUS_FLAG_ZERO, true)
}

func (c *CPU) BIT(mode uint8) {
	o := c.Read(c.getOperandAddr(mode))

	c.flagsOff(STATUS_FLAG_NEGATIVE | STATUS_FLAG_OVERFLOW | STATUS_FLAG_ZERO)
	var flags uint8
	if (o & c.acc) == 0 {
		flags = flags | STATUS_FLAG_ZERO
	}
	flags = flags | (o & (STATUS_FLAG_NEGATIVE | STATUS_FLAG_OVERFLOW))

	c.flagsOn(flags)
}

func (c *CPU) BMI(mode uint8) {
	c.branch(STATUS_FLAG_NEGATIVE, true)
}

func (c *CPU) BNE(mode uint8) {
	c.branch(STATUS_FLAG_ZERO, false)
}

func (c *CPU) BPL(mode uint8) {
	c.branch(STATUS_FLAG_NEGATIVE, false)
}

func (c *CPU) BRK(mode uint8) {
	// BRK is 2 bytes
	c.pushAddress(c.pc + 1)
	c.pushStack(c.status | STATUS_FLAG_BREAK)
	c.pc = c.Read16(INT_BRK)
	c.flagsOn(STATUS_FLAG_INTERRUPT_DISABLE)
}

func (c *CPU) BVC(mode uint8) {
	c.branch(STATUS_FLAG_OVERFLOW, false)
}

func (c *CPU) BVS(mode uint8) {
	c.branch(STATUS_FLAG_OVERFLOW, true)
}

func (c *CPU) CLC(mode uint8) {
	c.flagsOff(STATUS_FLAG_CARRY)
}

func (c *CPU) CLD(mode uint8) {
	c.flagsOff(STATUS_FLAG_DECIMAL)
}

func (c *CPU) CLI(mode uint8) {
	c.flagsOff(STATUS_FLAG_INTERRUPT_DISABLE)
}

func (c *CPU) CLV(mode uint8) {
	c.flagsOff(STATUS_FLAG_OVERFLOW)
}

func (c *CPU) CMP(mode uint8) {
	c.baseCMP(c.acc, c.Read(c.getOperandAddr(mode)))
}

func (c *CPU) CPX(mode uint8) {
	c.baseCMP(c.x, c.Read(c.getOperandAddr(mode)))
}

func (c *CPU) CPY(mode uint8) {
	c.baseCMP(c.y, c.Read(c.getOperandAddr(mode)))
}

func (c *CPU) DEC(mode uint8) {
	a := c.getOperandAddr(mode)
	c.Write(a, c.Read(a)-1)
	c.setNegativeAndZeroFlags(c.Read(a))
}

func (c *CPU) DEX(mode uint8) {
	c.x -= 1
	c.setNegativeAndZeroFlags(c.x)
}

func (c *CPU) DEY(mode uint8) {
	c.y -= 1
	c.setNegativeAndZeroFlags(c.y)
}

func (c *CPU) EOR(mode uint8) {
	c.acc = c.acc ^ c.Read(c.getOperandAddr(mode))
	c.setNegativeAndZeroFlags(c.acc)
}

func (c *CPU) INC(mode uint8) {
	a := c.getOperandAddr(mode)
	c.Write(a, c.Read(a)+1)
	c.setNegativeAndZeroFlags(c.Read(a))
}

func (c *CPU) INX(mode uint8) {
	c.x += 1
	c.setNegativeAndZeroFlags(c.x)
}

func (c *CPU) INY(mode uint8) {
	c.y += 1
	c.setNegativeAndZeroFlags(c.y)
}

func (c *CPU) JMP(mode uint8) {
	c.pc = c.getOperandAddr(mode)
}

func (c *CPU) JSR(mode uint8) {
	c.pushAddress(c.pc + 1) // this is the second byte of the JSR argument
	c.pc = c.getOperandAddr(mode)
}

func (c *CPU) LDA(mode uint8) {
	c.acc = c.Read(c.getOperandAddr(mode))
	c.setNegativeAndZeroFlags(c.acc)
}

func (c *CPU) LDX(mode uint8) {
	c.x = c.Read(c.getOperandAddr(mode))
	c.setNegativeAndZeroFlags(c.x)
}

func (c *CPU) LDY(mode uint8) {
	c.y = c.Read(c.getOperandAddr(mode))
	c.setNegativeAndZeroFlags(c.y)
}

func (c *CPU) LSR(mode uint8) {
	var ov, nv uint8
	switch mode {
	case ACCUMULATOR:
		ov = c.acc
		c.acc = c.acc >> 1
		nv = c.acc
	default:
		addr := c.getOperandAddr(mode)
		ov = c.Read(addr)
		nv = ov >> 1
		c.Write(addr, nv)
	}

	c.flagsOff(STATUS_FLAG_CARRY | STATUS_FLAG_NEGATIVE | STATUS_FLAG_ZERO)
	c.setNegativeAndZeroFlags(nv)
	if ov&STATUS_FLAG_CARRY != 0 {
		c.flagsOn(STATUS_FLAG_CARRY)
	}

}

func (c *CPU) NOP(mode uint8) {
	switch mode {
	case IMPLICIT, ACCUMULATOR:
		return
	default:
		// Undocumented NOPs still perform the addressing-mode
		// read (and its page-cross cycle penalty); they just
		// discard the result.
		c.getOperandAddr(mode)
	}
}

func (c *CPU) ORA(mode uint8) {
	c.acc = c.acc | c.Read(c.getOperandAddr(mode))
	c.setNegativeAndZeroFlags(c.acc)
}

func (c *CPU) PHA(mode uint8) {
	c.pushStack(c.acc)
}

func (c *CPU) PHP(mode uint8) {
	// 6502 always sets BREAK when pushing the status register to
	// the stack
	c.pushStack(c.status | STATUS_FLAG_BREAK)
}

func (c *CPU) PLA(mode uint8) {
	c.acc = c.popStack()
	c.setNegativeAndZeroFlags(c.acc)
}

func (c *CPU) PLP(mode uint8) {
	c.status = (c.popStack() &^ STATUS_FLAG_BREAK) | UNUSED_STATUS_FLAG
}

func (c *CPU) ROL(mode uint8) {
	var ov, nv uint8 // old value, new value
	switch mode {
	case ACCUMULATOR:
		ov = c.acc
		c.acc = ov<<1 | (c.status & STATUS_FLAG_CARRY)
		nv = c.acc
	default:
		addr := c.getOperandAddr(mode)
		ov = c.Read(addr)
		c.Write(addr, ov<<1|(c.status&STATUS_FLAG_CARRY))
		nv = c.Read(addr)
	}

	c.flagsOff(STATUS_FLAG_CARRY | STATUS_FLAG_NEGATIVE | STATUS_FLAG_ZERO)
	c.setNegativeAndZeroFlags(nv)
	if ov&0x80 != 0 {
		c.flagsOn(STATUS_FLAG_CARRY)
	}
}

func (c *CPU) ROR(mode uint8) {
	var ov, nv uint8 // old value, new value
	switch mode {
	case ACCUMULATOR:
		ov = c.acc
		c.acc = ov>>1 | ((c.status & STATUS_FLAG_CARRY) << 7)
		nv = c.acc
	default:
		addr := c.getOperandAddr(mode)
		ov = c.Read(addr)
		c.Write(addr, ov>>1|((c.status&STATUS_FLAG_CARRY)<<7))
		nv = c.Read(addr)
	}

	c.flagsOff(STATUS_FLAG_CARRY | STATUS_FLAG_NEGATIVE | STATUS_FLAG_ZERO)
	c.setNegativeAndZeroFlags(nv)
	if ov&STATUS_FLAG_CARRY != 0 { // was carry bit set in the old _value_?
		c.flagsOn(STATUS_FLAG_CARRY)
	}
}

func (c *CPU) RTI(mode uint8) {
	c.status = c.popStack()
	c.pc = c.popAddress()
}

func (c *CPU) RTS(mode uint8) {
	c.pc = c.popAddress() + 1
}

func (c *CPU) SBC(mode uint8) {
	c.sbcValue(c.Read(c.getOperandAddr(mode)))
}

func (c *CPU) SEC(mode uint8) {
	c.flagsOn(STATUS_FLAG_CARRY)
}

func (c *CPU) SED(mode uint8) {
	c.flagsOn(STATUS_FLAG_DECIMAL)
}

func (c *CPU) SEI(mode uint8) {
	c.flagsOn(STATUS_FLAG_INTERRUPT_DISABLE)
}

func (c *CPU) STA(mode uint8) {
	c.Write(c.getOperandAddr(mode), c.acc)
}

func (c *CPU) STX(mode uint8) {
	c.Write(c.getOperandAddr(mode), c.x)
}

func (c *CPU) STY(mode uint8) {
	c.Write(c.getOperandAddr(mode), c.y)
}

func (c *CPU) TAX(mode uint8) {
	c.x = c.acc
	c.setNegativeAndZeroFlags(c.x)
}

func (c *CPU) TAY(mode uint8) {
	c.y = c.acc
	c.setNegativeAndZeroFlags(c.y)
}

func (c *CPU) TSX(mode uint8) {
	c.x = c.sp
	c.setNegativeAndZeroFlags(c.x)
}

func (c *CPU) TXA(mode uint8) {
	c.acc = c.x
	c.setNegativeAndZeroFlags(c.acc)
}

func (c *CPU) TXS(mode uint8) {
	c.sp = c.x
}

func (c *CPU) TYA(mode uint8) {
	c.acc = c.y
	c.setNegativeAndZeroFlags(c.acc)
}

// Unofficial opcodes. These are never emitted by an assembler but are
// exercised by real cartridges (and by nestest past its first 5003
// lines), so a faithful core implements them too.

func (c *CPU) LAX(mode uint8) {
	v := c.Read(c.getOperandAddr(mode))
	c.acc = v
	c.x = v
	c.setNegativeAndZeroFlags(v)
}

func (c *CPU) SAX(mode uint8) {
	c.Write(c.getOperandAddr(mode), c.acc&c.x)
}

func (c *CPU) DCM(mode uint8) {
	addr := c.getOperandAddr(mode)
	v := c.Read(addr) - 1
	c.Write(addr, v)
	c.baseCMP(c.acc, v)
}

func (c *CPU) ISB(mode uint8) {
	addr := c.getOperandAddr(mode)
	v := c.Read(addr) + 1
	c.Write(addr, v)
	c.sbcValue(v)
}

func (c *CPU) SLO(mode uint8) {
	addr := c.getOperandAddr(mode)
	nv := c.memASL(addr)
	c.acc |= nv
	c.setNegativeAndZeroFlags(c.acc)
}

func (c *CPU) RLA(mode uint8) {
	addr := c.getOperandAddr(mode)
	nv := c.memROL(addr)
	c.acc &= nv
	c.setNegativeAndZeroFlags(c.acc)
}

func (c *CPU) SRE(mode uint8) {
	addr := c.getOperandAddr(mode)
	nv := c.memLSR(addr)
	c.acc ^= nv
	c.setNegativeAndZeroFlags(c.acc)
}

func (c *CPU) RRA(mode uint8) {
	addr := c.getOperandAddr(mode)
	nv := c.memROR(addr)
	c.adcValue(nv)
}

func (c *CPU) ANC(mode uint8) {
	c.acc &= c.Read(c.getOperandAddr(mode))
	c.flagsOff(STATUS_FLAG_CARRY)
	c.setNegativeAndZeroFlags(c.acc)
	if c.acc&0x80 != 0 {
		c.flagsOn(STATUS_FLAG_CARRY)
	}
}

func (c *CPU) ALR(mode uint8) {
	c.acc &= c.Read(c.getOperandAddr(mode))
	ov := c.acc
	c.acc = c.acc >> 1
	c.flagsOff(STATUS_FLAG_CARRY)
	if ov&0x01 != 0 {
		c.flagsOn(STATUS_FLAG_CARRY)
	}
	c.setNegativeAndZeroFlags(c.acc)
}

func (c *CPU) ARR(mode uint8) {
	c.acc &= c.Read(c.getOperandAddr(mode))
	c.acc = bits.RotateLeft8(c.acc, -1) | ((c.status & STATUS_FLAG_CARRY) << 7)
	c.setNegativeAndZeroFlags(c.acc)

	c.flagsOff(STATUS_FLAG_CARRY | STATUS_FLAG_OVERFLOW)
	bit6 := (c.acc >> 6) & 1
	bit5 := (c.acc >> 5) & 1
	if bit6 == 1 {
		c.flagsOn(STATUS_FLAG_CARRY)
	}
	if bit6^bit5 == 1 {
		c.flagsOn(STATUS_FLAG_OVERFLOW)
	}
}

func (c *CPU) AXS(mode uint8) {
	v := c.Read(c.getOperandAddr(mode))
	t := c.acc & c.x
	c.flagsOff(STATUS_FLAG_CARRY)
	if t >= v {
		c.flagsOn(STATUS_FLAG_CARRY)
	}
	c.x = t - v
	c.setNegativeAndZeroFlags(c.x)
}
