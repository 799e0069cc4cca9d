package csr

// Each pair below is declared in Go and implemented in
// csr_asm_riscv64.s, mirroring the declare/implement split used
// elsewhere in this module for instructions a register-taking asm
// mnemonic cannot parameterize.
func readSstatus() uint64
func writeSstatus(value uint64)
func readSie() uint64
func writeSie(value uint64)
func readStvec() uint64
func writeStvec(value uint64)
func readScounteren() uint64
func writeScounteren(value uint64)
func readSscratch() uint64
func writeSscratch(value uint64)
func readSepc() uint64
func writeSepc(value uint64)
func readScause() uint64
func writeScause(value uint64)
func readStval() uint64
func writeStval(value uint64)
func readSip() uint64
func writeSip(value uint64)
func readSatp() uint64
func writeSatp(value uint64)

func readHstatus() uint64
func writeHstatus(value uint64)
func readHedeleg() uint64
func writeHedeleg(value uint64)
func readHideleg() uint64
func writeHideleg(value uint64)
func readHie() uint64
func writeHie(value uint64)
func readHtimedelta() uint64
func writeHtimedelta(value uint64)
func readHcounteren() uint64
func writeHcounteren(value uint64)
func readHvip() uint64
func writeHvip(value uint64)
func readHtval() uint64
func writeHtval(value uint64)
func readHtinst() uint64
func writeHtinst(value uint64)
func readHgatp() uint64
func writeHgatp(value uint64)

func readVsstatus() uint64
func writeVsstatus(value uint64)
func readVsie() uint64
func writeVsie(value uint64)
func readVstvec() uint64
func writeVstvec(value uint64)
func readVsscratch() uint64
func writeVsscratch(value uint64)
func readVsepc() uint64
func writeVsepc(value uint64)
func readVscause() uint64
func writeVscause(value uint64)
func readVstval() uint64
func writeVstval(value uint64)
func readVsip() uint64
func writeVsip(value uint64)
func readVsatp() uint64
func writeVsatp(value uint64)
