package address

// ProfileSeed is the fixed tag that prefixes every profile address seed.
const ProfileSeed = "user"

// PostAddress derives the address of the post created by author with nonce.
// The nonce is opaque and must be at most MaxSeedLength bytes.
func PostAddress(programID, author Address, nonce []byte) (Address, uint8, error) {
	return FindProgramAddress([][]byte{author[:], nonce}, programID)
}

// ProfileAddress derives the single profile address of owner.
func ProfileAddress(programID, owner Address) (Address, uint8, error) {
	return FindProgramAddress([][]byte{[]byte(ProfileSeed), owner[:]}, programID)
}
