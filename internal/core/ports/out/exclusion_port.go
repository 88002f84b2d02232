package out

type ExclusionPort interface {
	// IsExcluded проверяет адрес или название переговорки
	IsExcluded(id string) bool
}
