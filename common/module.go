package common

type Module string

const (
	ModuleTreasury Module = "treasury"
)

func (m Module) String() string {
	return string(m)
}
