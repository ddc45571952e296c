package domain

// SpawnPoint is a fixed candidate pickup/dropoff location and its
// inherent fare-type bias. The spawn set is static configuration.
type SpawnPoint struct {
	Point  Point           `json:"point"`
	Biases FareProbability `json:"biases"`
}

// DefaultSpawnPoints is the arena map used for matches. Street names
// are kept as comments for cross-reference with the printed map.
func DefaultSpawnPoints() []SpawnPoint {
	return []SpawnPoint{
		// Aquatic Ave
		{Point{0.42, 0.42}, DefaultBias()}, // A
		{Point{1.77, 0.29}, DefaultBias()}, // B
		{Point{3.80, 0.29}, DefaultBias()}, // D
		{Point{5.20, 0.29}, DefaultBias()}, // E
		// Migration Ave
		{Point{1.74, 1.35}, DefaultBias()}, // F
		{Point{3.80, 1.35}, DefaultBias()}, // G
		{Point{5.25, 1.35}, DefaultBias()}, // H
		// Pondside Ave
		{Point{1.00, 2.96}, DefaultBias()}, // I
		{Point{5.25, 2.33}, DefaultBias()}, // J
		// Dabbler
		{Point{5.25, 2.93}, DefaultBias()}, // K
		// Breadcrumb Ave
		{Point{1.13, 4.59}, DefaultBias()}, // L
		{Point{2.46, 4.49}, DefaultBias()}, // M
		// Tail Ave
		{Point{3.76, 4.34}, DefaultBias()}, // N
		// Duckling Drive
		{Point{5.25, 4.75}, DefaultBias()}, // O
		// Mallard
		{Point{5.85, 1.90}, DefaultBias()}, // P
		{Point{5.93, 4.20}, DefaultBias()}, // Q
		// Waddle
		{Point{1.35, 2.10}, DefaultBias()}, // R
		// Beak
		{Point{4.52, 3.53}, DefaultBias()}, // S
		// Quack
		{Point{0.29, 2.00}, DefaultBias()}, // T
		{Point{0.29, 2.80}, DefaultBias()}, // U
		{Point{0.29, 4.10}, DefaultBias()}, // V
	}
}
