//go:build !riscv64

package csr

// Non-riscv64 builds get panicking stand-ins for the CSR layer so the
// package (and anything importing it, like cmd/hypercraft) still
// compiles; only the pure-logic paths are usable off-arch.

const errNotRiscv64 = "csr: riscv back-end requires riscv64"

func readSstatus() uint64 { panic(errNotRiscv64) }
func writeSstatus(value uint64) { panic(errNotRiscv64) }
func readSie() uint64 { panic(errNotRiscv64) }
func writeSie(value uint64) { panic(errNotRiscv64) }
func readStvec() uint64 { panic(errNotRiscv64) }
func writeStvec(value uint64) { panic(errNotRiscv64) }
func readScounteren() uint64 { panic(errNotRiscv64) }
func writeScounteren(value uint64) { panic(errNotRiscv64) }
func readSscratch() uint64 { panic(errNotRiscv64) }
func writeSscratch(value uint64) { panic(errNotRiscv64) }
func readSepc() uint64 { panic(errNotRiscv64) }
func writeSepc(value uint64) { panic(errNotRiscv64) }
func readScause() uint64 { panic(errNotRiscv64) }
func writeScause(value uint64) { panic(errNotRiscv64) }
func readStval() uint64 { panic(errNotRiscv64) }
func writeStval(value uint64) { panic(errNotRiscv64) }
func readSip() uint64 { panic(errNotRiscv64) }
func writeSip(value uint64) { panic(errNotRiscv64) }
func readSatp() uint64 { panic(errNotRiscv64) }
func writeSatp(value uint64) { panic(errNotRiscv64) }
func readHstatus() uint64 { panic(errNotRiscv64) }
func writeHstatus(value uint64) { panic(errNotRiscv64) }
func readHedeleg() uint64 { panic(errNotRiscv64) }
func writeHedeleg(value uint64) { panic(errNotRiscv64) }
func readHideleg() uint64 { panic(errNotRiscv64) }
func writeHideleg(value uint64) { panic(errNotRiscv64) }
func readHie() uint64 { panic(errNotRiscv64) }
func writeHie(value uint64) { panic(errNotRiscv64) }
func readHtimedelta() uint64 { panic(errNotRiscv64) }
func writeHtimedelta(value uint64) { panic(errNotRiscv64) }
func readHcounteren() uint64 { panic(errNotRiscv64) }
func writeHcounteren(value uint64) { panic(errNotRiscv64) }
func readHvip() uint64 { panic(errNotRiscv64) }
func writeHvip(value uint64) { panic(errNotRiscv64) }
func readHtval() uint64 { panic(errNotRiscv64) }
func writeHtval(value uint64) { panic(errNotRiscv64) }
func readHtinst() uint64 { panic(errNotRiscv64) }
func writeHtinst(value uint64) { panic(errNotRiscv64) }
func readHgatp() uint64 { panic(errNotRiscv64) }
func writeHgatp(value uint64) { panic(errNotRiscv64) }
func readVsstatus() uint64 { panic(errNotRiscv64) }
func writeVsstatus(value uint64) { panic(errNotRiscv64) }
func readVsie() uint64 { panic(errNotRiscv64) }
func writeVsie(value uint64) { panic(errNotRiscv64) }
func readVstvec() uint64 { panic(errNotRiscv64) }
func writeVstvec(value uint64) { panic(errNotRiscv64) }
func readVsscratch() uint64 { panic(errNotRiscv64) }
func writeVsscratch(value uint64) { panic(errNotRiscv64) }
func readVsepc() uint64 { panic(errNotRiscv64) }
func writeVsepc(value uint64) { panic(errNotRiscv64) }
func readVscause() uint64 { panic(errNotRiscv64) }
func writeVscause(value uint64) { panic(errNotRiscv64) }
func readVstval() uint64 { panic(errNotRiscv64) }
func writeVstval(value uint64) { panic(errNotRiscv64) }
func readVsip() uint64 { panic(errNotRiscv64) }
func writeVsip(value uint64) { panic(errNotRiscv64) }
func readVsatp() uint64 { panic(errNotRiscv64) }
func writeVsatp(value uint64) { panic(errNotRiscv64) }
