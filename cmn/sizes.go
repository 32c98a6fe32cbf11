package cmn

// Byte-size constants, same scale the teacher uses for SGL slab sizing
// (cmn.KiB*64, memsys.MaxPageSlabSize, ...).
const (
	KiB = 1024
	MiB = 1024 * KiB
	GiB = 1024 * MiB
)
