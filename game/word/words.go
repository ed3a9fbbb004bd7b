package word

// Default word pools.  Words are kept short and concrete so they can be drawn
// and guessed; the easy pool favors simple recognizable shapes.

func easyWords() []string {
	return []string{
		"sun", "moon", "star", "tree", "cat", "dog", "fish", "bird", "egg", "cup",
		"hat", "ball", "box", "key", "bed", "door", "book", "sock", "boat", "kite",
		"cake", "pie", "ice", "bus", "car", "van", "ant", "bee", "bug", "pig",
		"cow", "hen", "bat", "owl", "fox", "bag", "pen", "fan", "bow", "web",
		"pot", "pan", "jar", "mug", "rug", "map", "can", "log", "axe", "saw",
		"apple", "banana", "grape", "lemon", "cherry", "pizza", "bread", "candy",
		"house", "chair", "table", "clock", "phone", "lamp", "spoon", "fork",
		"heart", "cloud", "rain", "snow", "fire", "leaf", "flower", "grass",
		"smile", "face", "hand", "foot", "nose", "ear", "eye", "teeth", "bone",
		"frog", "duck", "bear", "lion", "mouse", "snake", "worm", "crab", "snail",
		"shark", "whale", "bunny", "panda", "monkey", "horse", "sheep", "goat",
		"turtle", "tiger", "zebra", "hippo", "giraffe", "penguin", "chicken",
		"bell", "ring", "crown", "gift", "cookie", "donut", "burger",
		"taco", "hotdog", "fries", "popcorn", "cupcake", "icecream",
		"shoe", "boot", "shirt", "pants", "dress", "glasses", "watch", "belt",
		"brush", "comb", "soap", "towel", "mirror", "pillow", "blanket",
		"bike", "train", "plane", "ship", "truck", "taxi", "rocket", "wheel",
		"rock", "hill", "pond", "river", "beach", "wave", "sand", "shell",
		"tent", "fence", "bridge", "path", "bench", "swing", "slide", "pool",
		"hammer", "nail", "rope", "ladder", "bucket", "shovel", "broom", "mop",
		"scissors", "tape", "glue", "paper", "pencil", "crayon", "eraser",
		"camera", "radio", "guitar", "drum", "piano", "balloon", "dice",
		"milk", "cheese", "butter", "rice", "corn", "peas", "carrot",
		"onion", "potato", "tomato", "mushroom", "pepper", "olive", "pickle",
		"barn", "castle", "church", "school", "hospital", "store", "park", "zoo",
	}
}

func mediumWords() []string {
	return []string{
		"sleeping", "running", "jumping", "dancing", "singing", "eating",
		"reading", "writing", "cooking", "swimming", "fishing", "camping",
		"flying", "crying", "laughing", "waving", "hugging", "kissing",
		"throwing", "catching", "kicking", "climbing", "sliding", "swinging",
		"rainbow", "snowman", "scarecrow", "windmill", "lighthouse", "volcano",
		"mountain", "island", "waterfall", "fountain", "campfire", "sunset",
		"sunrise", "starfish", "jellyfish", "octopus", "butterfly", "ladybug",
		"dragonfly", "caterpillar", "grasshopper", "spider", "scorpion",
		"dragon", "unicorn", "mermaid", "fairy", "ghost", "monster", "robot",
		"alien", "witch", "wizard", "ninja", "pirate", "knight", "princess",
		"angel", "devil", "vampire", "zombie", "skeleton", "mummy",
		"doctor", "nurse", "teacher", "chef", "farmer", "police", "firefighter",
		"pilot", "sailor", "cowboy", "clown", "artist", "singer", "dancer",
		"soccer", "football", "baseball", "basketball", "tennis", "golf",
		"bowling", "skiing", "surfing", "skating", "boxing", "wrestling",
		"archery", "diving", "hiking", "yoga", "karate", "gymnastics",
		"umbrella", "backpack", "suitcase", "treasure", "medal", "trophy",
		"telescope", "microscope", "magnet", "compass", "flashlight", "lantern",
		"candle", "matches", "fireworks", "parachute", "helicopter", "submarine",
		"motorcycle", "skateboard", "scooter", "ambulance", "firetruck",
		"violin", "trumpet", "flute", "harp", "saxophone", "tambourine",
		"xylophone", "accordion", "harmonica", "microphone", "headphones",
		"pyramid", "igloo", "treehouse", "skyscraper", "stadium", "airport",
		"library", "museum", "theater", "restaurant", "bakery", "pharmacy",
		"tornado", "hurricane", "earthquake", "avalanche", "lightning",
		"thunder", "blizzard", "desert", "jungle", "forest", "swamp", "cave",
		"birthday", "wedding", "christmas", "halloween", "easter", "valentine",
		"pumpkin", "snowflake", "present", "confetti", "candles",
		"computer", "laptop", "keyboard", "printer", "smartphone", "tablet",
		"gamepad", "joystick", "headset", "speaker", "charger", "battery",
	}
}
