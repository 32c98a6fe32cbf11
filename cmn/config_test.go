package cmn

import (
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func TestConfig(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "cmn/config")
}

var _ = Describe("TransportConf", func() {
	var conf TransportConf

	BeforeEach(func() {
		conf = TransportConf{
			ObjectBufferSize:           64 * KiB,
			ObjectCompressionThreshold: 256,
			Compression:                CompressNever,
			LZ4BlockMaxSize:            4 * MiB,
		}
	})

	It("accepts a config with all knobs strictly positive", func() {
		Expect(conf.Validate()).To(Succeed())
	})

	It("rejects a non-positive ObjectBufferSize", func() {
		conf.ObjectBufferSize = 0
		Expect(conf.Validate()).To(MatchError(ContainSubstring("ObjectBufferSize")))
	})

	It("rejects a non-positive ObjectCompressionThreshold", func() {
		conf.ObjectCompressionThreshold = -1
		Expect(conf.Validate()).To(MatchError(ContainSubstring("ObjectCompressionThreshold")))
	})

	It("rejects a non-positive LZ4BlockMaxSize", func() {
		conf.LZ4BlockMaxSize = 0
		Expect(conf.Validate()).To(MatchError(ContainSubstring("LZ4BlockMaxSize")))
	})
})

var _ = Describe("GCO", func() {
	It("round-trips BeginUpdate/CommitUpdate copy-on-write", func() {
		before := GCO.Get()
		update := GCO.BeginUpdate()
		update.Transport.LZ4BlockMaxSize = 8 * MiB
		GCO.CommitUpdate(update)

		after := GCO.Get()
		Expect(after.Transport.LZ4BlockMaxSize).To(Equal(int64(8 * MiB)))
		Expect(before.Transport.LZ4BlockMaxSize).NotTo(Equal(after.Transport.LZ4BlockMaxSize))
	})
})
