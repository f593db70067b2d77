// Generator for the AVX2 distance kernels in pkg/core/distance.
package main

import (
	. "github.com/mmcloughlin/avo/build"
	. "github.com/mmcloughlin/avo/operand"
	reg "github.com/mmcloughlin/avo/reg"
)

func main() {
	// --- Float32 ---
	TEXT("SquaredEuclideanAVX2", NOSPLIT, "func(v1, v2 []float32) float32")
	Pragma("noescape")
	Doc("SquaredEuclideanAVX2 calculates the squared Euclidean distance for float32 vectors using AVX2.")
	generateSquaredEuclideanFloat32()

	// --- Float16 ---
	TEXT("SquaredEuclideanFloat16AVX2", NOSPLIT, "func(v1, v2 []uint16) float32")
	Pragma("noescape")
	Doc("SquaredEuclideanFloat16AVX2 calculates the squared Euclidean distance for float16 vectors (represented as uint16) using AVX2.")
	generateSquaredEuclideanFloat16()

	Generate()
}

func generateSquaredEuclideanFloat32() {
	v1Ptr := Load(Param("v1").Base(), GP64())
	v2Ptr := Load(Param("v2").Base(), GP64())
	n := Load(Param("v1").Len(), GP64())

	sumVec := YMM()
	VXORPS(sumVec, sumVec, sumVec)

	Label("loop_euclidean_f32")
	CMPQ(n, Imm(8))
	JL(LabelRef("remainder_euclidean_f32"))

	v1Vec := YMM()
	v2Vec := YMM()
	VMOVUPS(Mem{Base: v1Ptr}, v1Vec)
	VMOVUPS(Mem{Base: v2Ptr}, v2Vec)

	diffVec := YMM()
	VSUBPS(v2Vec, v1Vec, diffVec)
	VFMADD231PS(diffVec, diffVec, sumVec)

	ADDQ(Imm(32), v1Ptr)
	ADDQ(Imm(32), v2Ptr)
	SUBQ(Imm(8), n)
	JMP(LabelRef("loop_euclidean_f32"))

	Label("remainder_euclidean_f32")
	CMPQ(n, Imm(0))
	JE(LabelRef("done_euclidean_f32"))

	v1Scalar := XMM()
	v2Scalar := XMM()
	VMOVSS(Mem{Base: v1Ptr}, v1Scalar)
	VMOVSS(Mem{Base: v2Ptr}, v2Scalar)

	diffScalar := XMM()
	VSUBSS(v2Scalar, v1Scalar, diffScalar)

	sumScalar := XMM()
	VXORPS(sumScalar, sumScalar, sumScalar)
	VFMADD231SS(diffScalar, diffScalar, sumScalar)

	tmp := YMM()
	VMOVDQU(sumScalar.AsY(), tmp)
	VADDPS(tmp, sumVec, sumVec)

	ADDQ(Imm(4), v1Ptr)
	ADDQ(Imm(4), v2Ptr)
	SUBQ(Imm(1), n)
	JMP(LabelRef("remainder_euclidean_f32"))

	Label("done_euclidean_f32")
	sumHorizontal(sumVec)

	ret := XMM()
	VMOVAPS(sumVec.AsX(), ret)
	Store(ret, ReturnIndex(0))
	RET()
}

func generateSquaredEuclideanFloat16() {
	v1Ptr := Load(Param("v1").Base(), GP64())
	v2Ptr := Load(Param("v2").Base(), GP64())
	n := Load(Param("v1").Len(), GP64())

	sumVec := YMM()
	VXORPS(sumVec, sumVec, sumVec)

	Label("loop_euclidean_f16")
	CMPQ(n, Imm(8))
	JL(LabelRef("remainder_euclidean_f16"))

	v1F16 := XMM()
	v2F16 := XMM()
	VMOVDQU(Mem{Base: v1Ptr}, v1F16)
	VMOVDQU(Mem{Base: v2Ptr}, v2F16)

	v1F32 := YMM()
	v2F32 := YMM()
	VCVTPH2PS(v1F16, v1F32)
	VCVTPH2PS(v2F16, v2F32)

	diffVec := YMM()
	VSUBPS(v2F32, v1F32, diffVec)
	VFMADD231PS(diffVec, diffVec, sumVec)

	ADDQ(Imm(16), v1Ptr)
	ADDQ(Imm(16), v2Ptr)
	SUBQ(Imm(8), n)
	JMP(LabelRef("loop_euclidean_f16"))

	Label("remainder_euclidean_f16")
	CMPQ(n, Imm(0))
	JE(LabelRef("done_euclidean_f16"))

	v1F16Scalar := XMM()
	v2F16Scalar := XMM()
	PINSRW(Imm(0), Mem{Base: v1Ptr}, v1F16Scalar)
	PINSRW(Imm(0), Mem{Base: v2Ptr}, v2F16Scalar)

	v1F32Scalar := XMM()
	v2F32Scalar := XMM()
	VCVTPH2PS(v1F16Scalar, v1F32Scalar)
	VCVTPH2PS(v2F16Scalar, v2F32Scalar)

	diffScalar := XMM()
	VSUBSS(v2F32Scalar, v1F32Scalar, diffScalar)

	sumScalar := XMM()
	VXORPS(sumScalar, sumScalar, sumScalar)
	VFMADD231SS(diffScalar, diffScalar, sumScalar)

	tmp := YMM()
	VMOVDQU(sumScalar.AsY(), tmp)
	VADDPS(tmp, sumVec, sumVec)

	ADDQ(Imm(2), v1Ptr)
	ADDQ(Imm(2), v2Ptr)
	SUBQ(Imm(1), n)
	JMP(LabelRef("remainder_euclidean_f16"))

	Label("done_euclidean_f16")
	sumHorizontal(sumVec)

	ret := XMM()
	VMOVAPS(sumVec.AsX(), ret)
	Store(ret, ReturnIndex(0))
	RET()
}

// sumHorizontal horizontally sums the 8 float32 values in a YMM register.
func sumHorizontal(vec reg.Register) {
	h1 := YMM()
	VEXTRACTF128(Imm(1), vec, h1.AsX())
	VADDPS(vec, h1, vec)

	h2 := YMM()
	VSHUFPS(Imm(0b11101110), vec, vec, h2)
	VADDPS(h2, vec, vec)

	h3 := YMM()
	VSHUFPS(Imm(0b01010101), vec, vec, h3)
	VADDPS(h3, vec, vec)
}
